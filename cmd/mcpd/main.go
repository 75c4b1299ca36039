// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command mcpd runs an MCP server, attaching whichever transports the
// operator enables, over a shared registry/cache/rate-limiter/worker
// pool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/content"
	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/pool"
	"github.com/coremcp/mcpd/registry"
	"github.com/coremcp/mcpd/server"
	"github.com/coremcp/mcpd/toolschema"
	"github.com/coremcp/mcpd/transport"
	"github.com/coremcp/mcpd/uritemplate"
)

var cli struct {
	LogsDir  string `default:"/var/log" help:"directory to store logs"`
	Debug    bool   `default:"false" help:"log to stdout/stderr instead of a rotated file"`
	LogLevel string `default:"info" help:"log level: debug, info, warn, error"`

	Workers       int           `default:"4" help:"worker pool size"`
	QueueSize     int           `default:"1024" help:"worker pool queue capacity"`
	SubmitTimeout time.Duration `default:"500ms" help:"how long Submit blocks when the queue is full"`

	RateLimitMaxRequests int           `default:"100" help:"max requests per client per window"`
	RateLimitWindow      time.Duration `default:"1s" help:"rate-limit fixed window size"`

	CacheCapacity int           `default:"256" help:"resource cache capacity"`
	CacheTTL      time.Duration `default:"5m" help:"default resource cache TTL"`

	ResourcesEnabled bool `default:"true" help:"enable list_resources/list_resource_templates/read_resource"`

	Stdio bool   `default:"false" help:"attach a stdio transport on the process's stdin/stdout"`
	TCP   string `default:"" help:"attach a TCP transport listening on host:port"`

	HTTPAddr         string `default:"" help:"attach plain HTTP (/call_tool) + Streamable HTTP (/mcp) + /stats on host:port"`
	StreamablePrefix string `default:"/mcp" help:"Streamable-HTTP mount prefix"`
	EnableSessions   bool   `default:"true" help:"enable Streamable-HTTP session tracking"`

	MQTTBroker string `default:"" help:"attach MQTT, dialing this broker URL"`
	MQTTTopic  string `default:"mcp/requests" help:"MQTT subscribe topic"`
	MQTTReply  string `default:"mcp/responses" help:"MQTT publish topic"`

	BackendHost string `default:"" help:"upstream host for the backend connection pool (exposed to handlers via Server.BackendPool; the demo handlers do not use it)"`
	BackendPort string `default:"" help:"upstream port for the backend connection pool"`
}

func main() {
	kong.Parse(&cli)

	level := mcplog.ParseLevel(cli.LogLevel)
	var log *mcplog.Logger
	if cli.Debug {
		log = mcplog.New(os.Stderr, level)
	} else {
		mcplog.CleanupOldLogs(cli.LogsDir, "mcpd")
		log = mcplog.NewRotating(filepath.Join(cli.LogsDir, "mcpd.log"), level)
	}

	cfg := server.Config{
		QueueSize:            cli.QueueSize,
		Workers:              cli.Workers,
		SubmitTimeout:        cli.SubmitTimeout,
		RateLimitMaxRequests: cli.RateLimitMaxRequests,
		RateLimitWindow:      cli.RateLimitWindow,
		CacheCapacity:        cli.CacheCapacity,
		CacheTTL:             cli.CacheTTL,
		ResourcesEnabled:     cli.ResourcesEnabled,
	}
	if cli.BackendHost != "" {
		cfg.BackendPool = pool.New(pool.Config{
			Host:    cli.BackendHost,
			Port:    cli.BackendPort,
			MinSize: 1,
			MaxSize: 8,
		})
	}

	srv := server.New(cfg, log)
	registerDemo(srv, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cli.Stdio {
		t := transport.NewStdio(os.Stdin, os.Stdout, os.Stdin, 0, log)
		if err := srv.AttachStdio(ctx, t); err != nil {
			log.Fatal("attach stdio: %v", err)
		}
		log.Info("stdio transport attached")
	}
	if cli.TCP != "" {
		ln, err := transport.ListenTCP(cli.TCP, 0, log)
		if err != nil {
			log.Fatal("listen tcp %s: %v", cli.TCP, err)
		}
		srv.AttachTCP(ctx, ln)
		log.Info("tcp transport listening on %s", cli.TCP)
	}
	if cli.HTTPAddr != "" {
		httpCfg := server.HTTPConfig{
			Addr:             cli.HTTPAddr,
			StreamablePrefix: cli.StreamablePrefix,
			Streamable: transport.StreamableServerConfig{
				EnableSessions: cli.EnableSessions,
				SessionTTL:     10 * time.Minute,
				BacklogSize:    64,
			},
		}
		if err := srv.ListenAndServeHTTP(ctx, httpCfg); err != nil {
			log.Fatal("listen http %s: %v", cli.HTTPAddr, err)
		}
		log.Info("http transport listening on %s", cli.HTTPAddr)
	}
	if cli.MQTTBroker != "" {
		t, err := transport.DialMQTT(ctx, transport.MQTTConfig{
			Broker:         cli.MQTTBroker,
			ClientID:       "mcpd",
			SubscribeTopic: cli.MQTTTopic,
			PublishTopic:   cli.MQTTReply,
			ConnectTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Fatal("dial mqtt %s: %v", cli.MQTTBroker, err)
		}
		if err := srv.AttachMQTT(ctx, t); err != nil {
			log.Fatal("attach mqtt: %v", err)
		}
		log.Info("mqtt transport connected to %s", cli.MQTTBroker)
	}

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown: %v", err)
	}
}

// registerDemo wires in the toy "echo" tool and "greeting" resource family
// the spec's worked examples reference, giving operators something to
// call_tool/read_resource against immediately.
func registerDemo(srv *server.Server, log *mcplog.Logger) {
	reg := srv.Registry()

	err := reg.RegisterTool(registry.Tool{
		Name:        "echo",
		Description: "Echoes back the provided message.",
		Params: []toolschema.ParamSchema{
			{Name: "message", Type: "string", Description: "text to echo back", Required: true},
		},
	}, func(ctx context.Context, arguments []byte) ([]content.Item, bool, error) {
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return []content.Item{content.Text(fmt.Sprintf("invalid arguments: %v", err), "")}, true, nil
		}
		return []content.Item{content.Text(args.Message, "text/plain")}, false, nil
	})
	if err != nil {
		log.Fatal("register echo tool: %v", err)
	}

	err = reg.RegisterTemplate(registry.ResourceTemplate{
		URITemplate: "greeting://{name}",
		Name:        "greeting",
		MIMEType:    "text/plain",
		Description: "A templated greeting resource, one per name.",
	}, func(ctx context.Context, uri string, params map[string]uritemplate.Value) ([]content.Item, error) {
		name := "world"
		if v, ok := params["name"]; ok && v.Present {
			name = v.Text
		}
		return []content.Item{content.Text(fmt.Sprintf("Hello, %s!", name), "text/plain")}, nil
	})
	if err != nil {
		log.Fatal("register greeting template: %v", err)
	}
}
