// Command ws_smoke exercises a running server end to end: it registers two
// accounts, opens the receiver's chat and notification hubs, sends a message
// from the other account and waits for both pushes.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/rentline-server/internal/proto"
)

type account struct {
	Token string `json:"token"`
	User  struct {
		ID        int64  `json:"id"`
		FirstName string `json:"firstName"`
	} `json:"user"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	text := flag.String("text", "Is the apartment still available?", "message text to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	suffix := time.Now().UnixNano()
	tenant, err := register(ctx, *base, fmt.Sprintf("tenant-%d@example.com", suffix), "Tess", "tenant")
	if err != nil {
		return fmt.Errorf("register tenant: %w", err)
	}
	landlord, err := register(ctx, *base, fmt.Sprintf("landlord-%d@example.com", suffix), "Lars", "landlord")
	if err != nil {
		return fmt.Errorf("register landlord: %w", err)
	}

	wsBase := strings.Replace(*base, "http", "ws", 1)
	dial := func(path, token string) (*websocket.Conn, error) {
		conn, _, err := websocket.Dial(ctx, wsBase+path, &websocket.DialOptions{
			HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
		})
		return conn, err
	}

	chatIn, err := dial("/hubs/chat", landlord.Token)
	if err != nil {
		return fmt.Errorf("dial landlord chat: %w", err)
	}
	defer chatIn.Close(websocket.StatusNormalClosure, "bye")

	notifyIn, err := dial("/hubs/notifications", landlord.Token)
	if err != nil {
		return fmt.Errorf("dial landlord notifications: %w", err)
	}
	defer notifyIn.Close(websocket.StatusNormalClosure, "bye")

	chatOut, err := dial("/hubs/chat", tenant.Token)
	if err != nil {
		return fmt.Errorf("dial tenant chat: %w", err)
	}
	defer chatOut.Close(websocket.StatusNormalClosure, "bye")

	if err := invoke(ctx, chatIn, proto.InboundTypePing, nil, "pong"); err != nil {
		return err
	}

	data := proto.SendMessageData{ReceiverID: landlord.User.ID, Content: *text}
	if err := wsjson.Write(ctx, chatOut, frame(proto.InboundTypeSendMessage, data)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	var msg proto.Message
	if err := expect(ctx, chatIn, "ReceiveMessage", &msg); err != nil {
		return err
	}
	fmt.Printf("ReceiveMessage: id=%d from=%d text=%q\n", msg.ID, msg.SenderID, msg.Content)

	var note proto.Notification
	if err := expect(ctx, chatIn, "ReceiveNotification", &note); err != nil {
		return err
	}
	fmt.Printf("ReceiveNotification: id=%d %q\n", note.ID, note.Message)

	if err := invoke(ctx, chatIn, proto.InboundTypeMarkMessageAsRead, proto.MessageIDData{MessageID: msg.ID}, "MessageRead"); err != nil {
		return err
	}
	if err := invoke(ctx, notifyIn, proto.InboundTypeGetUnreadNotifications, nil, "UnreadNotifications"); err != nil {
		return err
	}
	if err := invoke(ctx, notifyIn, proto.InboundTypeMarkAllAsRead, nil, "AllNotificationsRead"); err != nil {
		return err
	}

	fmt.Println("smoke test passed")
	return nil
}

func frame(method string, data any) proto.Inbound {
	in := proto.Inbound{Type: method}
	if data != nil {
		raw, _ := json.Marshal(data)
		in.Data = raw
	}
	return in
}

// invoke sends a method and waits for the named event.
func invoke(ctx context.Context, conn *websocket.Conn, method string, data any, event string) error {
	if err := wsjson.Write(ctx, conn, frame(method, data)); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}
	return expect(ctx, conn, event, nil)
}

// expect reads frames until the named event arrives. Error frames abort.
func expect(ctx context.Context, conn *websocket.Conn, event string, into any) error {
	for {
		var out struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("waiting for %s: %w", event, err)
		}
		if out.Type == proto.OutboundTypeError && out.Error != nil {
			return fmt.Errorf("waiting for %s: server error %s: %s", event, out.Error.Code, out.Error.Msg)
		}
		fmt.Printf("Received outbound: type=%s event=%s\n", out.Type, out.Event)
		if out.Event != event {
			continue
		}
		if into != nil && len(out.Data) > 0 {
			if err := json.Unmarshal(out.Data, into); err != nil {
				return fmt.Errorf("decode %s: %w", event, err)
			}
		}
		return nil
	}
}

func register(ctx context.Context, base, email, firstName, role string) (*account, error) {
	body, _ := json.Marshal(map[string]string{
		"email":     email,
		"password":  "smoke-password",
		"firstName": firstName,
		"role":      role,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/auth/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, errors.New(resp.Status + ": " + e.Error)
	}

	var acc account
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
