package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type dummyToken struct{ err error }

func (t *dummyToken) Wait() bool                     { return true }
func (t *dummyToken) WaitTimeout(time.Duration) bool { return true }
func (t *dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *dummyToken) Error() error { return t.err }

// fakeClient implements pahoClient for tests.
type fakeClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs  []error
	disconnected bool
}

func (f *fakeClient) IsConnected() bool   { return !f.disconnected }
func (f *fakeClient) Connect() paho.Token { return &dummyToken{} }
func (f *fakeClient) Disconnect(uint)     { f.disconnected = true }
func (f *fakeClient) Publish(topic string, qos byte, _ bool, _ interface{}) paho.Token {
	f.published = append(f.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(f.publishErrs) > 0 {
		err := f.publishErrs[0]
		f.publishErrs = f.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (f *fakeClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	f.subscribed = append(f.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}

func withFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	fc := &fakeClient{}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { fc.opts = o; return fc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
	return fc
}

func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestPublishQoSApplied(t *testing.T) {
	fc := withFakeClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{"state": 1}}
	cli, err := NewPahoClient(cfg, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("warehouse/state", []byte(`{}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fc.published) != 1 || fc.published[0].qos != 1 {
		t.Fatalf("publish qos not applied: %+v", fc.published)
	}
}

func TestSubscribeQoSApplied(t *testing.T) {
	fc := withFakeClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{"command": 2}}
	cli, err := NewPahoClient(cfg, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Subscribe("warehouse/agv/+/position", nil); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(fc.subscribed) != 1 || fc.subscribed[0].qos != 2 {
		t.Fatalf("subscribe qos not applied: %+v", fc.subscribed)
	}
}

func TestLWTConfigured(t *testing.T) {
	fc := withFakeClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !fc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if fc.opts.WillTopic != "lwt" || string(fc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if !fc.disconnected {
		t.Fatalf("disconnect not forwarded")
	}
}

func TestPublishRetries(t *testing.T) {
	fc := withFakeClient(t)
	fc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("warehouse/state", []byte(`{}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fc.published) != 2 {
		t.Fatalf("expected retries, got %d publishes", len(fc.published))
	}
}

func TestPublishExhaustsRetries(t *testing.T) {
	fc := withFakeClient(t)
	fail := fmt.Errorf("net fail")
	fc.publishErrs = []error{fail, fail, fail}
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 2, BackoffMS: 1}
	cli, err := NewPahoClient(cfg, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("warehouse/state", []byte(`{}`)); err == nil {
		t.Fatalf("expected publish error after retries")
	}
}
