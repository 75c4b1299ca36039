// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command mcpc is an interactive MCP client REPL: dial one transport,
// then list/read/call against it from a line-oriented prompt.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/client"
	"github.com/coremcp/mcpd/internal/mcplog"
	"github.com/coremcp/mcpd/transport"
	"github.com/coremcp/mcpd/uritemplate"
)

type stdioCmd struct {
	Command string   `arg:"" help:"subprocess command to launch as the MCP server"`
	Args    []string `arg:"" optional:"" help:"arguments to the subprocess"`
}

type tcpCmd struct {
	Addr string `arg:"" help:"host:port to dial"`
}

type httpCmd struct {
	URL string `arg:"" help:"endpoint URL, e.g. http://host:port/call_tool"`
}

type sthttpCmd struct {
	BaseURL string `arg:"" help:"Streamable-HTTP base URL, e.g. http://host:port/mcp"`
	SSE     bool   `default:"true" help:"enable the resumable SSE stream"`
	Sessions bool  `default:"true" help:"enable session tracking"`
}

type websocketCmd struct {
	URL string `arg:"" help:"ws(s)://host:port/path to dial"`
}

type mqttCmd struct {
	Broker     string `arg:"" help:"MQTT broker URL, e.g. tcp://host:1883"`
	SubTopic   string `default:"mcp/responses" help:"topic this client subscribes to"`
	PubTopic   string `default:"mcp/requests" help:"topic this client publishes to"`
}

var cli struct {
	APIKey  string        `default:"" help:"bearer API key for HTTP-family transports"`
	Timeout time.Duration `default:"10s" help:"per-request timeout"`

	Stdio     stdioCmd     `cmd:"" help:"talk to a subprocess over stdin/stdout (not supported: exits with an error)"`
	TCP       tcpCmd       `cmd:"" help:"dial a TCP server"`
	HTTP      httpCmd      `cmd:"" help:"talk to a plain HTTP /call_tool endpoint"`
	Sthttp    sthttpCmd    `cmd:"" help:"talk to a Streamable-HTTP endpoint"`
	Websocket websocketCmd `cmd:"" help:"dial a WebSocket endpoint"`
	MQTT      mqttCmd      `cmd:"" help:"connect over MQTT"`
}

func main() {
	ctx := kong.Parse(&cli)
	log := mcplog.Discard()

	c, closer, err := dial(ctx.Command())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcpc: %v\n", err)
		os.Exit(1)
	}
	defer closer()

	repl(c, log)
}

func dial(command string) (*client.Client, func(), error) {
	bg := context.Background()
	noop := func() {}
	verb, _, _ := strings.Cut(command, " ")

	switch verb {
	case "stdio":
		return nil, noop, fmt.Errorf("stdio: launching subprocesses is not implemented in this build; pipe mcpd's stdin/stdout directly")
	case "tcp":
		c, err := client.DialTCP(bg, cli.TCP.Addr, cli.Timeout, nil, nil)
		return c, func() { c.Stop() }, err
	case "http":
		c, err := client.NewHTTP(cli.HTTP.URL, cli.Timeout, cli.APIKey, nil, nil)
		return c, func() { c.Stop() }, err
	case "sthttp":
		c, err := client.NewStreamableHTTP(bg, transport.StreamableHTTPClientConfig{
			BaseURL:             cli.Sthttp.BaseURL,
			APIKey:              cli.APIKey,
			Timeout:             cli.Timeout,
			EnableSessions:      cli.Sthttp.Sessions,
			EnableSSE:           cli.Sthttp.SSE,
			EnableAutoReconnect: true,
			ReconnectDelay:      time.Second,
		}, nil, nil)
		return c, func() { c.Stop() }, err
	case "websocket":
		header := http.Header{}
		if cli.APIKey != "" {
			header.Set("Authorization", "Bearer "+cli.APIKey)
		}
		c, err := client.DialWebSocket(bg, cli.Websocket.URL, header, nil, nil)
		return c, func() { c.Stop() }, err
	case "mqtt":
		c, err := client.DialMQTT(bg, transport.MQTTConfig{
			Broker:         cli.MQTT.Broker,
			ClientID:       "mcpc",
			SubscribeTopic: cli.MQTT.SubTopic,
			PublishTopic:   cli.MQTT.PubTopic,
			ConnectTimeout: 10 * time.Second,
		}, nil, nil)
		return c, func() { c.Stop() }, err
	default:
		return nil, noop, fmt.Errorf("unrecognized command %q", command)
	}
}

const help = `commands:
  list_resources
  list_resource_templates
  list_tools
  read <uri>
  expand <template> <json>
  read_template <template> <json>
  call <tool> <json-args>
  help
  exit`

func repl(c *client.Client, log *mcplog.Logger) {
	fmt.Println(help)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("mcp> ")
		if !scanner.Scan() {
			return
		}
		runLine(c, strings.TrimSpace(scanner.Text()))
	}
}

func runLine(c *client.Client, line string) {
	if line == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "help":
		fmt.Println(help)
	case "exit", "quit":
		os.Exit(0)
	case "list_resources":
		printJSON(c.ListResources(ctx, cli.Timeout))
	case "list_resource_templates":
		printJSON(c.ListResourceTemplates(ctx, cli.Timeout))
	case "list_tools":
		printJSON(c.ListTools(ctx, cli.Timeout))
	case "read":
		if rest == "" {
			fmt.Println("usage: read <uri>")
			return
		}
		printJSON(c.ReadResource(ctx, rest, cli.Timeout))
	case "expand":
		raw, argsJSON, ok := strings.Cut(rest, " ")
		if !ok || raw == "" {
			fmt.Println("usage: expand <template> <json>")
			return
		}
		uri, err := expandTemplate(raw, argsJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Println(uri)
	case "read_template":
		raw, argsJSON, ok := strings.Cut(rest, " ")
		if !ok || raw == "" {
			fmt.Println("usage: read_template <template> <json>")
			return
		}
		uri, err := expandTemplate(raw, argsJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		printJSON(c.ReadResource(ctx, uri, cli.Timeout))
	case "call":
		name, argsJSON, _ := strings.Cut(rest, " ")
		if name == "" {
			fmt.Println("usage: call <tool> <json-args>")
			return
		}
		argsJSON = strings.TrimSpace(argsJSON)
		var args json.RawMessage
		if argsJSON != "" {
			args = json.RawMessage(argsJSON)
		}
		printJSON(c.CallTool(ctx, name, args, cli.Timeout))
	default:
		fmt.Println("unrecognized command; type 'help'")
	}
}

func expandTemplate(raw, argsJSON string) (string, error) {
	tmpl, err := uritemplate.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	params := map[string]any{}
	argsJSON = strings.TrimSpace(argsJSON)
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &params); err != nil {
			return "", fmt.Errorf("parse params: %w", err)
		}
	}
	return tmpl.Expand(params)
}

func printJSON(v any, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
