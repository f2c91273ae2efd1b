package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/warefleet/agvsim/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled            bool            `json:"enabled"`
	Broker             string          `json:"broker"`
	ClientID           string          `json:"client_id"`
	Username           string          `json:"username"`
	Password           string          `json:"password"`
	UseTLS             bool            `json:"use_tls"`
	ClientCert         string          `json:"client_cert"`
	ClientKey          string          `json:"client_key"`
	CABundle           string          `json:"ca_bundle"`
	StateTopic         string          `json:"state_topic"`
	CommandTopicPrefix string          `json:"command_topic_prefix"`
	QoS                map[string]byte `json:"qos"`
	LWTTopic           string          `json:"lwt_topic"`
	LWTPayload         string          `json:"lwt_payload"`
	LWTQoS             byte            `json:"lwt_qos"`
	LWTRetain          bool            `json:"lwt_retain"`
	MaxRetries         int             `json:"max_retries"`
	BackoffMS          int             `json:"backoff_ms"`
	TLSConfig          *tls.Config     `json:"-"`
}

// SetDefaults fills in optional fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "agvsim"
	}
	if c.StateTopic == "" {
		c.StateTopic = "warehouse/state"
	}
	if c.CommandTopicPrefix == "" {
		c.CommandTopicPrefix = "warehouse/agv"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks that an enabled configuration can be connected.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	return nil
}

// pahoClient is the subset of the Paho client used by the bridge. Tests
// substitute a fake implementation.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient wraps the Eclipse Paho client with retrying publishes.
type PahoClient struct {
	cli     pahoClient
	cfg     Config
	logger  logger.Logger
	backoff time.Duration
}

// NewPahoClient connects to the MQTT broker. The onConnect hook runs on every
// (re)connection and is where subscriptions are installed.
func NewPahoClient(cfg Config, onConnect func(c paho.Client)) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		cfg:     cfg,
		logger:  log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if onConnect != nil {
			onConnect(c)
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Publish sends a payload to the given topic, retrying with exponential
// backoff on failure.
func (p *PahoClient) Publish(topic string, payload []byte) error {
	qos := byte(0)
	if q, ok := p.cfg.QoS["state"]; ok {
		qos = q
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Subscribe installs a message handler on the given topic filter.
func (p *PahoClient) Subscribe(topic string, handler paho.MessageHandler) error {
	qos := byte(0)
	if q, ok := p.cfg.QoS["command"]; ok {
		qos = q
	}
	if token := p.cli.Subscribe(topic, qos, handler); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
