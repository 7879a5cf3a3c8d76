package motor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"motorconf-go/bus"
	"motorconf-go/errcode"
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/platform"
	"motorconf-go/types"
)

var (
	TopicConfig   = bus.T("config", "motor")   // raw config in (retained by the store)
	TopicResolved = bus.T("motor", "resolved") // descriptor out (retained)
	TopicStatus   = bus.T("motor", "status")   // load outcome (retained)
	TopicCheck    = bus.T("motor", "check")    // request: resolve without applying
)

// Service resolves every motor config published on the bus and publishes the
// resulting descriptor. Loads are handled one at a time in arrival order.
type Service struct {
	topo platform.Topology
	opts []Option
	log  *log.Logger

	current config.ResolvedMotorConfig
	gen     uint32
}

func NewService(topo platform.Topology, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{topo: topo, opts: opts, log: logger.WithPrefix("motor")}
}

// Start subscribes and launches the service loop. The loop ends with ctx.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(TopicConfig)
	chkSub := conn.Subscribe(TopicCheck)
	go s.serviceLoop(ctx, conn, cfgSub, chkSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub, chkSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(chkSub)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping")
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			s.load(conn, msg)
		case msg, ok := <-chkSub.Channel():
			if !ok {
				return
			}
			_, st := s.resolve(msg.Payload)
			conn.Reply(msg, st, false)
		}
	}
}

// load applies a config message. Rejections keep the current descriptor.
func (s *Service) load(conn *bus.Connection, msg *bus.Message) {
	if msg.Payload == nil {
		return // retained config cleared
	}
	res, st := s.resolve(msg.Payload)
	if st.State == types.MotorOK && (s.gen == 0 || res != s.current) {
		s.current = res
		s.gen++
		conn.Publish(conn.NewMessage(TopicResolved, res, true))
		s.log.Info("applied",
			"gen", s.gen, "protocol", res.Protocol, "transport", res.Transport,
			"dma", res.DMA, "motors", res.Count, "rate_hz", res.UpdateRateHz)
	}
	st.Generation = s.gen
	conn.Publish(conn.NewMessage(TopicStatus, st, true))
}

func (s *Service) resolve(payload any) (config.ResolvedMotorConfig, types.MotorStatus) {
	now := time.Now().UnixMilli()
	raw, err := config.Decode(payload)
	if err == nil {
		var res config.ResolvedMotorConfig
		if res, err = Resolve(raw, s.topo, s.opts...); err == nil {
			st := types.MotorStatus{State: types.MotorOK, Code: errcode.OK, TS: now}
			for _, a := range Diff(raw, res) {
				s.log.Debug("adjusted", "field", a.Field, "from", a.From, "to", a.To)
				st.Adjustments = append(st.Adjustments, a.String())
			}
			return res, st
		}
	}
	s.log.Warn("rejected", "code", errcode.Of(err), "err", err)
	return config.ResolvedMotorConfig{}, types.MotorStatus{
		State: types.MotorRejected,
		Code:  errcode.Of(err),
		Error: err.Error(),
		TS:    now,
	}
}
