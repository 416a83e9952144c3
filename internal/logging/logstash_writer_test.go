package logging

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"
)

func TestLogstashWriterForwardsLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte(`{"msg":"listing submitted"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case line := <-received:
		if line != "{\"msg\":\"listing submitted\"}\n" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for log line")
	}
}

func TestLogstashWriterDropsWhileUnreachable(t *testing.T) {
	w, err := NewLogstashWriter("logstash:5000", WithRetryInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewLogstashWriter: %v", err)
	}
	dials := 0
	w.dial = func(string, string, time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		n, err := w.Write([]byte("entry"))
		if err != nil || n != len("entry") {
			t.Fatalf("expected silent drop, got n=%d err=%v", n, err)
		}
	}
	if dials != 1 {
		t.Fatalf("expected a single dial inside the retry window, got %d", dials)
	}
	if w.Dropped() != 3 {
		t.Fatalf("expected 3 dropped entries, got %d", w.Dropped())
	}

	_ = w.Close()
	if _, err := w.Write([]byte("late")); err == nil {
		t.Fatalf("expected error after close")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New("verbose", ""); err == nil {
		t.Fatalf("expected invalid level error")
	}
	logger, cleanup, err := New("debug", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	logger.Debug("ready")
}
