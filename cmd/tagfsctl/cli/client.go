package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/taggablefs/tagfs/internal/config"
	"github.com/taggablefs/tagfs/internal/dispatch"
	"github.com/taggablefs/tagfs/internal/wire"
)

// rootFlags holds the persistent flags every subcommand needs to locate a
// running daemon's transport endpoints.
type rootFlags struct {
	rootDir        string
	endpointScheme string
}

func (f *rootFlags) config() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.RootDir = f.rootDir
	if f.endpointScheme != "" {
		cfg.EndpointScheme = f.endpointScheme
	}
	return cfg
}

// client binds this invocation's own operator mailbox and talks to a
// running daemon's inbound endpoint. One client is created per subcommand
// invocation and closed before the process exits, since the operator
// mailbox is a fixed well-known path shared by every tagfsctl invocation
// and only one can be bound at a time.
type client struct {
	cfg *config.Config
	ctl *wire.Endpoint
}

func newClient(f *rootFlags) (*client, error) {
	cfg := f.config()
	ctl, err := wire.Listen(cfg.CtlEndpoint())
	if err != nil {
		return nil, fmt.Errorf("bind operator endpoint (is another tagfsctl already running?): %w", err)
	}
	c := &client{cfg: cfg, ctl: ctl}
	if err := c.ping(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *client) Close() {
	c.ctl.Close()
}

// ping verifies a daemon is listening before issuing the real request, per
// the health-check handshake convention.
func (c *client) ping() error {
	req, err := wire.Dial(c.cfg.InboundEndpoint())
	if err != nil {
		return fmt.Errorf("dial daemon inbound endpoint: %w", err)
	}
	defer req.Close()
	if err := req.SendWithDeadline([]byte(dispatch.QHTest), true); err != nil {
		return fmt.Errorf("daemon did not accept QH_TEST: %w", err)
	}
	_, err = c.ctl.ReceiveWithDeadline()
	if err != nil {
		return fmt.Errorf("daemon did not respond to QH_TEST: %w", err)
	}
	return nil
}

func (c *client) send(verb, payload string) error {
	msg := verb
	if payload != "" {
		msg = verb + " " + payload
	}
	req, err := wire.Dial(c.cfg.InboundEndpoint())
	if err != nil {
		return fmt.Errorf("dial daemon inbound endpoint: %w", err)
	}
	defer req.Close()
	return req.Send([]byte(msg), true)
}

// call sends verb/payload and returns the single-frame reply.
func (c *client) call(verb, payload string) (string, error) {
	if err := c.send(verb, payload); err != nil {
		return "", err
	}
	frame, err := c.ctl.Receive()
	if err != nil {
		return "", err
	}
	return string(frame.Payload), nil
}

// callMulti sends verb/payload and collects every frame up to and
// including the final one.
func (c *client) callMulti(verb, payload string) ([]string, error) {
	if err := c.send(verb, payload); err != nil {
		return nil, err
	}
	parts, err := c.ctl.ReceiveAll()
	if err != nil {
		return nil, err
	}
	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		entries = append(entries, string(p))
	}
	return entries, nil
}

// ackOrError turns a reply into an error unless it is the acknowledgement
// token; a decimal payload is reported as the POSIX error code it encodes.
func ackOrError(reply string, err error) error {
	if err != nil {
		return err
	}
	if reply == dispatch.ReplyAck {
		return nil
	}
	if n, convErr := strconv.Atoi(reply); convErr == nil {
		return fmt.Errorf("daemon returned errno %d", n)
	}
	return fmt.Errorf("daemon returned: %s", reply)
}

func printLines(entries []string) {
	for _, e := range entries {
		fmt.Fprintln(os.Stdout, e)
	}
}

func boolFlag(strict bool) string {
	if strict {
		return "1"
	}
	return "0"
}
