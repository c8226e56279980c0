package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const webhookTimeout = 10 * time.Second

func newWebhookClient() *resty.Client {
	return resty.New().
		SetTimeout(webhookTimeout).
		SetHeader("Content-Type", "application/json")
}

// postJSON posts msg and accepts any of the given status codes.
func postJSON(ctx context.Context, client *resty.Client, service, url string, msg any, accept ...int) error {
	resp, err := client.R().SetContext(ctx).SetBody(msg).Post(url)
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", service, err)
	}
	for _, code := range accept {
		if resp.StatusCode() == code {
			return nil
		}
	}
	return fmt.Errorf("%s API returned status %d: %s", service, resp.StatusCode(), resp.String())
}
