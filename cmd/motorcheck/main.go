// motorcheck resolves motor output configurations against board descriptions
// offline, the same way the motor service does on the target.
package main

import "motorconf-go/cmd/motorcheck/cmd"

func main() {
	cmd.Execute()
}
