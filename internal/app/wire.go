package app

import (
	"io"

	"github.com/newthinker/gems/internal/collector/yahoo"
	"github.com/newthinker/gems/internal/config"
	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/notifier"
	"github.com/newthinker/gems/internal/notifier/email"
	"github.com/newthinker/gems/internal/notifier/webhook"
	"github.com/newthinker/gems/internal/storage/archive"
	"github.com/newthinker/gems/internal/strategy/additive"
	"github.com/newthinker/gems/internal/strategy/momentum"
	"go.uber.org/zap"
)

// NewFromConfig builds an App with the Yahoo provider, both scoring
// policies and whichever mirrors and notifiers cfg enables.
func NewFromConfig(cfg *config.Config, log *zap.Logger, out io.Writer) (*App, error) {
	a := New(cfg, log, out)

	a.RegisterCollector(yahoo.New(
		yahoo.WithLogger(a.logger),
		yahoo.WithTimeout(cfg.Fetch.Timeout),
		yahoo.WithRateLimit(cfg.Fetch.RateLimit),
		yahoo.WithUserAgent(cfg.Fetch.UserAgent),
		yahoo.WithProxy(cfg.Fetch.Proxy),
	))

	a.RegisterPolicy(additive.New())
	a.RegisterPolicy(momentum.New())

	if cfg.Archive.Enabled {
		s3cfg := cfg.Archive.S3
		store, err := archive.NewS3(archive.S3Config{
			Bucket:    s3cfg.Bucket,
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Prefix:    s3cfg.Prefix,
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		a.AddMirror(store)
	}

	if e := cfg.Notify.Email; e.Enabled {
		err := registerNotifier(a, &email.Email{}, map[string]any{
			"host":     e.Host,
			"port":     e.Port,
			"username": e.Username,
			"password": e.Password,
			"from":     e.From,
			"to":       e.To,
		})
		if err != nil {
			return nil, err
		}
	}

	if w := cfg.Notify.Webhook; w.Enabled {
		err := registerNotifier(a, &webhook.Webhook{}, map[string]any{
			"url":     w.URL,
			"headers": w.Headers,
		})
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

func registerNotifier(a *App, n notifier.Notifier, params map[string]any) error {
	if err := n.Init(notifier.Config{Type: n.Name(), Params: params}); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	return a.RegisterNotifier(n)
}
