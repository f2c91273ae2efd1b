package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/warefleet/agvsim/core/model"
	"github.com/warefleet/agvsim/infra/logger"
	"github.com/warefleet/agvsim/internal/eventbus"
)

// CommandKind identifies the kind of digital-twin command.
type CommandKind int

const (
	// CommandOverridePosition teleports a vehicle to a cell.
	CommandOverridePosition CommandKind = iota
	// CommandAssignTask injects an external task into a vehicle.
	CommandAssignTask
)

// Command is a twin intervention received over MQTT. Commands are queued by
// the broker callback and applied by the simulation loop between ticks.
type Command struct {
	ID        string
	Kind      CommandKind
	VehicleID string
	Cell      model.Cell
	Task      model.Task
}

// Publisher is the outbound half of the bridge.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber installs message handlers on topic filters.
type Subscriber interface {
	Subscribe(topic string, handler paho.MessageHandler) error
}

// Bridge connects the simulation to a digital twin over MQTT. Inbound
// commands arrive on per-vehicle topics; the fleet state is published after
// every tick.
type Bridge struct {
	cfg Config
	pub Publisher
	log logger.Logger

	mu      sync.Mutex
	pending []Command
}

// NewBridge creates a bridge using the given publisher for outbound state.
func NewBridge(cfg Config, pub Publisher) *Bridge {
	cfg.SetDefaults()
	return &Bridge{cfg: cfg, pub: pub, log: logger.New("twin_bridge")}
}

// Attach subscribes the bridge to the per-vehicle command topics. It is
// intended to run from the client's OnConnect hook so subscriptions survive
// reconnects.
func (b *Bridge) Attach(sub Subscriber) error {
	prefix := b.cfg.CommandTopicPrefix
	if err := sub.Subscribe(prefix+"/+/position", b.onMessage); err != nil {
		return err
	}
	return sub.Subscribe(prefix+"/+/task", b.onMessage)
}

func (b *Bridge) onMessage(_ paho.Client, msg paho.Message) {
	cmd, err := b.decode(msg.Topic(), msg.Payload())
	if err != nil {
		b.log.Errorf("drop command on %s: %v", msg.Topic(), err)
		return
	}
	b.mu.Lock()
	b.pending = append(b.pending, cmd)
	b.mu.Unlock()
	b.log.Debugf("queued %s command %s for %s", topicSuffix(msg.Topic()), cmd.ID, cmd.VehicleID)
}

func (b *Bridge) decode(topic string, payload []byte) (Command, error) {
	vehicleID, action, err := splitCommandTopic(b.cfg.CommandTopicPrefix, topic)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{ID: uuid.NewString(), VehicleID: vehicleID}
	switch action {
	case "position":
		var c model.Cell
		if err := json.Unmarshal(payload, &c); err != nil {
			return Command{}, fmt.Errorf("decode position: %w", err)
		}
		cmd.Kind = CommandOverridePosition
		cmd.Cell = c
	case "task":
		var t struct {
			Pickup  model.Cell `json:"pickup"`
			Dropoff model.Cell `json:"dropoff"`
		}
		if err := json.Unmarshal(payload, &t); err != nil {
			return Command{}, fmt.Errorf("decode task: %w", err)
		}
		cmd.Kind = CommandAssignTask
		cmd.Task = model.Task{ID: cmd.ID, Pickup: t.Pickup, Dropoff: t.Dropoff}
	default:
		return Command{}, fmt.Errorf("unknown action %q", action)
	}
	return cmd, nil
}

// Drain returns all queued commands and clears the queue. The simulation
// loop calls it once per tick.
func (b *Bridge) Drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	cmds := b.pending
	b.pending = nil
	return cmds
}

// SetPublisher installs the outbound publisher. The bridge is constructed
// before the broker connection, so the publisher arrives late.
func (b *Bridge) SetPublisher(pub Publisher) { b.pub = pub }

// PublishState marshals a tick snapshot and publishes it on the state topic.
func (b *Bridge) PublishState(snapshot any) error {
	if b.pub == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return b.pub.Publish(b.cfg.StateTopic, payload)
}

// pahoSubscriber adapts a connected broker client for Attach.
type pahoSubscriber struct {
	c   paho.Client
	qos byte
}

func (s pahoSubscriber) Subscribe(topic string, handler paho.MessageHandler) error {
	if token := s.c.Subscribe(topic, s.qos, handler); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// NewTwinClient connects to the broker and wires the bridge into the
// connection lifecycle so command subscriptions survive reconnects.
func NewTwinClient(cfg Config, bridge *Bridge) (*PahoClient, error) {
	cfg.SetDefaults()
	qos := byte(0)
	if q, ok := cfg.QoS["command"]; ok {
		qos = q
	}
	client, err := NewPahoClient(cfg, func(c paho.Client) {
		if err := bridge.Attach(pahoSubscriber{c: c, qos: qos}); err != nil {
			bridge.log.Errorf("attach subscriptions: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	bridge.SetPublisher(client)
	return client, nil
}

// Run consumes tick snapshots from the bus and publishes them until the
// context is canceled.
func (b *Bridge) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := b.PublishState(ev); err != nil {
				b.log.Errorf("publish state: %v", err)
			}
		}
	}
}

// splitCommandTopic extracts the vehicle ID and action from a command topic
// of the form <prefix>/<vehicle_id>/<action>.
func splitCommandTopic(prefix, topic string) (vehicleID, action string, err error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", "", fmt.Errorf("topic %q outside prefix %q", topic, prefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("malformed command topic %q", topic)
	}
	return parts[0], parts[1], nil
}

func topicSuffix(topic string) string {
	if i := strings.LastIndex(topic, "/"); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
