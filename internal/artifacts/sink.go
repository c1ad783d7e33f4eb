// Package artifacts delivers rendered theme exports to their destination.
package artifacts

import (
	"context"
	"fmt"

	"github.com/codr1/themeforge/internal/config"
	"github.com/codr1/themeforge/internal/export"
)

// Sink accepts an artifact's bytes together with its filename and MIME type.
type Sink interface {
	Deliver(ctx context.Context, artifact export.Artifact) error
}

// Discard drops every artifact. It backs the "none" sink.
type Discard struct{}

func (Discard) Deliver(context.Context, export.Artifact) error { return nil }

// New builds the sink selected in cfg.
func New(cfg config.ExportConfig) (Sink, error) {
	switch cfg.Sink {
	case config.SinkNone, "":
		return Discard{}, nil
	case config.SinkFile:
		return NewFileSink(cfg.Directory)
	case config.SinkSES:
		return NewSESSink(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, cfg.SES.Region, cfg.SES.Sender, cfg.SES.Recipient)
	default:
		return nil, fmt.Errorf("unsupported export sink: %s", cfg.Sink)
	}
}
