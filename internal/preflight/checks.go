package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sys/unix"

	"textflix/internal/config"
	"textflix/internal/services/llm"
	"textflix/internal/services/radarr"
)

// CheckRedis verifies that the conversation store's Redis instance answers a
// ping.
func CheckRedis(ctx context.Context, cfg *config.Config) Result {
	const name = "Redis"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Conversation.RedisAddr,
		Password: cfg.Conversation.RedisPassword,
		DB:       cfg.Conversation.RedisDB,
	})
	defer client.Close()

	if err := client.Ping(checkCtx).Err(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%v)", cfg.Conversation.RedisAddr, err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Conversation.RedisAddr}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a single attempt so a down API fails fast instead of retrying
// through the whole backoff schedule.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	const name = "LLM API"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Referer: cfg.LLM.Referer,
		Title:   cfg.LLM.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTMDB verifies TMDB connectivity and key validity against the
// configuration endpoint, the cheapest authenticated call the API offers.
func CheckTMDB(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := strings.TrimRight(cfg.TMDB.BaseURL, "/") + "/configuration?api_key=" + url.QueryEscape(cfg.TMDB.APIKey)
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	case http.StatusUnauthorized:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckRadarr verifies Radarr connectivity and authentication.
func CheckRadarr(ctx context.Context, cfg *config.Config) Result {
	const name = "Radarr"

	client, err := radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Radarr.URL}
}

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
