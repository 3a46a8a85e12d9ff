package eventbus

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/pkg/logging"
)

type args struct {
	data interface{}
}

func TestPublisher_Publish_NoSubscribers(t *testing.T) {
	type other struct {
		data interface{}
	}
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)
	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *args) {
		t.Error("should not be called")
	})
	publisher.Publish(&other{data: "test"})

	if output := logBuffer.String(); output == "" {
		t.Error("should have logged")
	} else if !strings.Contains(output, "eventbus.Publish: no matching subscribers") {
		t.Errorf("should have contained no matching subscribers but got: %q", output)
	}
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	called := false
	var data interface{}
	publisher.Subscribe(func(e *args) {
		called = true
		data = e.data
	})
	publisher.Publish(&args{data: "test"})
	if !called {
		t.Error("should be called")
	}
	if data != "test" {
		t.Errorf("expected: %v, got: %v", "test", data)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	handler := func(e *args) {
		t.Error("should not be called after unsubscribe")
	}
	publisher.Subscribe(handler)
	if publisher.SubscribersCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", publisher.SubscribersCount())
	}
	publisher.Unsubscribe(handler)
	if publisher.SubscribersCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", publisher.SubscribersCount())
	}
}

func TestMatchSignature(t *testing.T) {
	type a struct{}
	type b struct{}
	if !MatchSignature(func(e *a) {}, []interface{}{&a{}}) {
		t.Error("expected true")
	}
	if MatchSignature(func(e *a) {}, []interface{}{&b{}}) {
		t.Error("expected false")
	}
	if MatchSignature(func(e *a) {}, []interface{}{}) {
		t.Error("expected false")
	}
	if MatchSignature(func(e *a) {}, []interface{}{&a{}, &a{}}) {
		t.Error("expected false")
	}
	if !MatchSignature(func(ctx context.Context) {}, []interface{}{context.Background()}) {
		t.Error("expected true")
	}
}

func TestPublisher_PanicRecovery(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.ErrorLevel)

	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *args) {
		panic("intentional panic for testing")
	})

	called := false
	publisher.Subscribe(func(e *args) {
		called = true
	})

	publisher.Publish(&args{data: "test"})

	if !called {
		t.Error("subsequent handler should still run after a panic")
	}
	if !strings.Contains(logBuffer.String(), "panicked") {
		t.Errorf("panic should be logged, got: %q", logBuffer.String())
	}
}
