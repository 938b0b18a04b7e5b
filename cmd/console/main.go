package main

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/pkg/log"
	websocketPkg "SuperApp/pkg/websocket"
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

// console is an interactive client: every stdin line is sent as a command
// and every frame pushed by the server is printed.
func main() {
	_ = godotenv.Load()
	logger := log.NewLogger()

	baseURL := os.Getenv("ASSISTANT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000/api/v1/assistant"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := websocketPkg.NewStreamClient(baseURL, logger)
	defer client.Close()

	session, err := client.OpenSession(ctx)
	if err != nil {
		logger.Fatalf("Failed to open session: %v", err)
	}
	if err := client.Connect(ctx, session.Token); err != nil {
		logger.Fatalf("Failed to open stream: %v", err)
	}

	fmt.Printf("session %s ready, type a command (\"帮助\" lists them)\n", session.SessionID)

	go func() {
		for frame := range client.Frames() {
			printFrame(frame)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := client.SendCommand(line); err != nil {
				logger.Errorf("Failed to send command: %v", err)
				return
			}
		}
	}
}

func printFrame(frame assistant.StreamFrame) {
	switch frame.Type {
	case "event":
		if frame.Event != nil {
			fmt.Printf("[%s] %s\n", frame.Event.Kind, frame.Event.Text)
			if url, ok := frame.Event.Data["audio_url"].(string); ok {
				fmt.Printf("  audio: %s\n", url)
			}
		}
	case "result":
		if frame.Result != nil {
			fmt.Printf("> %s (%s)\n", frame.Result.Command.IntentID, frame.Result.Command.Status)
			if frame.Result.Awaiting != nil {
				fmt.Printf("  awaiting %s\n", frame.Result.Awaiting.Field)
			}
		}
	case "error":
		fmt.Printf("! %d %s\n", frame.Code, frame.Error)
	}
}
