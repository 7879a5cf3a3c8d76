// motord runs the configuration store and the motor service on one bus and
// logs every descriptor the output driver would be armed with.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"motorconf-go/bus"
	cfgsvc "motorconf-go/services/config"
	"motorconf-go/services/motor"
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/platform"
	"motorconf-go/types"
)

func main() {
	device := pflag.StringP("device", "d", "quad_f405", "embedded device configuration")
	boardName := pflag.StringP("board", "b", platform.F405Ref.Name, "board the motors are wired to")
	level := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if l, err := log.ParseLevel(*level); err == nil {
		logger.SetLevel(l)
	}

	board, ok := platform.Lookup(*boardName)
	if !ok {
		logger.Fatal("unknown board", "board", *boardName, "known", platform.Names())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(8)
	watch := b.NewConnection("main")
	resSub := watch.Subscribe(motor.TopicResolved)
	stSub := watch.Subscribe(motor.TopicStatus)

	if err := motor.NewService(board, logger).Start(ctx, b.NewConnection("motor")); err != nil {
		logger.Fatal("motor service", "err", err)
	}
	cctx := context.WithValue(ctx, cfgsvc.CtxDeviceKey, *device)
	if err := cfgsvc.NewConfigService().Start(cctx, b.NewConnection("config")); err != nil {
		logger.Fatal("config store", "device", *device, "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case m := <-resSub.Channel():
			res := m.Payload.(config.ResolvedMotorConfig)
			for i, mo := range res.Active() {
				logger.Info("motor", "n", i, "output", mo.Output, "pin", mo.Pin,
					"timer", mo.Timer, "ch", mo.Channel, "dma", mo.DMA)
			}
		case m := <-stSub.Channel():
			st := m.Payload.(types.MotorStatus)
			if st.State != types.MotorOK {
				logger.Error("motor config rejected", "code", st.Code, "err", st.Error)
			}
		}
	}
}
