package platform

import "motorconf-go/services/motor/config"

func init() {
	Register(&F405Ref)
	Register(&H743Ref)
}

func pin(port byte, n uint8, opts ...TimerOption) PinDef {
	return PinDef{Pin: config.Tag(port, n), Timers: opts}
}

func ch(t config.TimerID, c uint8, controller, stream uint8) TimerOption {
	o := TimerOption{Timer: t, Channel: c}
	if controller != 0 {
		o.DMA = config.Stream(controller, stream)
	}
	return o
}

// F405Ref is an STM32F405 reference layout. Its DMA request map is fixed, so
// several motor pins compete for streams (TIM2_CH3/TIM5_CH4 on DMA1_ST1).
var F405Ref = Board{
	Name:   "f405_ref",
	Motors: 8,
	Timers: []Timer{
		{ID: 1, BurstDMA: config.Stream(2, 5)},
		{ID: 2, BurstDMA: config.Stream(1, 7)},
		{ID: 3, BurstDMA: config.Stream(1, 2)},
		{ID: 4, BurstDMA: config.Stream(1, 6)},
		{ID: 5, BurstDMA: config.Stream(1, 0)},
		{ID: 8, BurstDMA: config.Stream(2, 1)},
		{ID: 9},
	},
	Pins: []PinDef{
		pin('B', 0, ch(3, 3, 1, 7), ch(8, 2, 2, 3), ch(1, 2, 2, 6)),
		pin('B', 1, ch(3, 4, 1, 2), ch(8, 3, 2, 4), ch(1, 3, 2, 6)),
		pin('A', 3, ch(2, 4, 1, 6), ch(5, 4, 1, 1), ch(9, 2, 0, 0)),
		pin('A', 2, ch(2, 3, 1, 1), ch(5, 3, 1, 0), ch(9, 1, 0, 0)),
		pin('C', 6, ch(8, 1, 2, 2), ch(3, 1, 1, 4)),
		pin('C', 7, ch(8, 2, 2, 3), ch(3, 2, 1, 5)),
		pin('C', 8, ch(8, 3, 2, 4), ch(3, 3, 1, 7)),
		pin('C', 9, ch(8, 4, 2, 7), ch(3, 4, 1, 2)),
		pin('A', 8, ch(1, 1, 2, 6)),
		pin('A', 9, ch(1, 2, 2, 2)),
		pin('A', 10, ch(1, 3, 2, 6)),
		pin('B', 6, ch(4, 1, 1, 0)),
		pin('B', 7, ch(4, 2, 1, 3)),
		pin('B', 8, ch(4, 3, 1, 7)),
		pin('B', 9, ch(4, 4, 0, 0)),
	},
	Bitbang: []BitbangTimer{
		{Timer: 1, Ports: "ABC"},
		{Timer: 8, Ports: "ABCD"},
	},
}

// H743Ref is an STM32H743 reference layout. DMAMUX lets any stream serve any
// request, modelled here as one private stream per channel.
var H743Ref = Board{
	Name:   "h743_ref",
	Motors: 8,
	Timers: []Timer{
		{ID: 1, BurstDMA: config.Stream(2, 0)},
		{ID: 3, BurstDMA: config.Stream(1, 0)},
		{ID: 4, BurstDMA: config.Stream(1, 1)},
		{ID: 5, BurstDMA: config.Stream(1, 2)},
		{ID: 8, BurstDMA: config.Stream(2, 1)},
	},
	Pins: []PinDef{
		pin('B', 0, ch(3, 3, 1, 3), ch(8, 2, 2, 2)),
		pin('B', 1, ch(3, 4, 1, 4), ch(8, 3, 2, 3)),
		pin('A', 0, ch(5, 1, 1, 5)),
		pin('A', 1, ch(5, 2, 1, 6)),
		pin('A', 2, ch(5, 3, 1, 7)),
		pin('A', 3, ch(5, 4, 2, 4)),
		pin('D', 12, ch(4, 1, 2, 5)),
		pin('D', 13, ch(4, 2, 2, 6)),
		pin('E', 9, ch(1, 1, 2, 7)),
	},
	Bitbang: []BitbangTimer{
		{Timer: 1, Ports: "ABCDE"},
		{Timer: 8, Ports: "ABCDE"},
	},
}
