package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ridenow-service/pkg/logger"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type apiError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	godotenv.Load()
	log := logger.NewLogger()

	app := &cli.App{
		Name:  "capture-payment",
		Usage: "settle the authorized payment of a ride through the ride API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   "http://localhost:8080",
				Usage:   "ride service base URL",
				EnvVars: []string{"RIDE_API_URL"},
			},
			&cli.Int64Flag{
				Name:     "ride",
				Usage:    "ride id",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 15 * time.Second,
				Usage: "request timeout",
			},
		},
		Action: func(c *cli.Context) error {
			rideID := c.Int64("ride")
			if rideID <= 0 {
				return cli.Exit("ride id must be positive", 2)
			}

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			body, err := capturePayment(ctx, c.String("api"), rideID)
			if err != nil {
				log.Error("Capture failed", "rideId", rideID, "error", err)
				return cli.Exit(err.Error(), 1)
			}

			fmt.Fprintln(c.App.Writer, string(body))
			log.Info("Payment captured", "rideId", rideID)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func capturePayment(ctx context.Context, apiURL string, rideID int64) ([]byte, error) {
	target := fmt.Sprintf("%s/rides/%d/payment/capture", strings.TrimRight(apiURL, "/"), rideID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := cleanhttp.DefaultClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ride service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure apiError
		if json.Unmarshal(body, &failure) == nil && failure.Error.Kind != "" {
			return nil, fmt.Errorf("%s (%d): %s", failure.Error.Kind, resp.StatusCode, failure.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
