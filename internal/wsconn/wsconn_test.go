package wsconn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func mockWSServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		if handler != nil {
			handler(conn)
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClient_Connect_Success(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	cfg := DefaultConfig(wsURL(server), "test")
	cfg.PingInterval = 0

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if client.State() != StateConnected {
		t.Errorf("expected state %v, got %v", StateConnected, client.State())
	}
	if !client.IsConnected() {
		t.Error("expected IsConnected() to return true")
	}
}

func TestClient_Connect_Failure(t *testing.T) {
	cfg := DefaultConfig("ws://localhost:59999", "test")
	cfg.PingInterval = 0

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("expected Connect to fail with invalid URL")
	}

	if client.State() != StateDisconnected {
		t.Errorf("expected state %v, got %v", StateDisconnected, client.State())
	}
}

func TestClient_SendJSON(t *testing.T) {
	var mu sync.Mutex
	var received []byte

	server := mockWSServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		mu.Lock()
		received = data
		mu.Unlock()
	})
	defer server.Close()

	cfg := DefaultConfig(wsURL(server), "test")
	cfg.PingInterval = 0

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	payload := map[string]any{
		"method": "subscribe",
		"ch":     "ticker/1s",
		"params": map[string]any{"symbols": []string{"SHARDSUSDT"}},
	}
	if err := client.SendJSON(ctx, payload); err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		got := received
		mu.Unlock()
		if got != nil {
			var decoded map[string]any
			if err := json.Unmarshal(got, &decoded); err != nil {
				t.Fatalf("server received invalid JSON: %v", err)
			}
			if decoded["method"] != "subscribe" {
				t.Errorf("expected method subscribe, got %v", decoded["method"])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("server never received the message")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_ReceiveMessages(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if err := conn.Write(ctx, websocket.MessageText, []byte(`{"ch":"ticker/1s"}`)); err != nil {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	cfg := DefaultConfig(wsURL(server), "test")
	cfg.PingInterval = 0

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	got := 0
	timeout := time.After(2 * time.Second)
	for got < 3 {
		select {
		case <-client.Messages():
			got++
		case <-timeout:
			t.Fatalf("expected 3 messages, got %d", got)
		}
	}
}

func TestClient_SendWhileDisconnected(t *testing.T) {
	cfg := DefaultConfig("ws://localhost:59999", "test")

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := client.Send(context.Background(), []byte("x")); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
