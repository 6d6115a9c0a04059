// Command plaza-bot connects simulated players to a plaza server. Each bot walks between
// random points and chats every so often.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	endpoint := flag.String("endpoint", "ws://localhost:2567/", "plaza websocket url")
	clients := flag.Int("clients", 5, "number of bots to connect")
	scene := flag.String("scene", "plaza", "scene the bots join")
	token := flag.String("token", "", "join token sent by every bot")
	duration := flag.Duration("duration", 0, "how long to run; zero runs until interrupted")
	flag.Parse()

	if *clients < 1 {
		slog.Error("clients must be at least 1")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var wg sync.WaitGroup
	for i := range *clients {
		if ctx.Err() != nil {
			break
		}

		b := newBot(botConfig{
			endpoint: *endpoint,
			sceneId:  *scene,
			token:    *token,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.run(ctx)
			if err != nil {
				slog.Warn("bot stopped", "bot", i, "farmId", b.farmId, "error", err)
			}
		}()

		// Stagger joins so the server is not hit by every handshake at once.
		select {
		case <-ctx.Done():
		case <-time.After(50 * time.Millisecond):
		}
	}

	wg.Wait()
	slog.Info("exiting")
}
