package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/tidwall/redcon"
)

var address = flag.String("address", ":6390", "The ip:port to listen on for Redis protocol.")

// RunRedisServer serves the lists of `registry` over the Redis protocol until `ctx` is cancelled.
func RunRedisServer(ctx context.Context, registry *Registry) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	handler, err := NewHandler(registry)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			args := make([]string, len(cmd.Args)-1)
			for i := 1; i < len(cmd.Args); i++ {
				args[i-1] = string(cmd.Args[i])
			}
			reply := handler.Handle(string(cmd.Args[0]), args...)
			reply.writeTo(conn)
			if reply.closeConnection {
				if err := conn.Close(); err != nil {
					slog.Error("Failed to close connection.", "error", err)
				}
			}
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		slog.Info("Serving lists over the Redis protocol.", "address", *address)
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		if err := redisServer.Close(); err != nil {
			return fmt.Errorf("failed to close tlist server: %w", err)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
