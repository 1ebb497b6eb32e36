package clients

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

// ValkeyClient is the hot layer in front of the Postgres analysis cache.
// Every operation degrades to a miss on failure; Postgres stays the source
// of truth.
type ValkeyClient struct {
	Client valkey.Client
}

func InitValkey(address, password string) (*ValkeyClient, error) {
	var initErr error
	valkeyOnce.Do(func() {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress:      []string{address},
			Password:         password,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		})
		if err != nil {
			initErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			initErr = err
			return
		}

		slog.Info("[ValkeyClient] Connected to valkey", slog.String("address", address))
		valkeyInstance = &ValkeyClient{Client: client}
	})

	return valkeyInstance, initErr
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// Get returns the cached value for key, or ("", false) on miss or error.
func (vc *ValkeyClient) Get(ctx context.Context, key string) (string, bool) {
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Get failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return "", false
	}

	value, err := res.ToString()
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores value under key with a TTL. Failures are logged and swallowed.
func (vc *ValkeyClient) Set(ctx context.Context, key, value string, ttl time.Duration) {
	err := vc.Client.Do(ctx, vc.Client.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error()
	if err != nil {
		slog.Warn("[ValkeyClient] Set failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
