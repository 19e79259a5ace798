package provider

import (
	"context"
	"errors"
	"testing"
)

type scriptedProvider struct {
	id    string
	reply string
	err   error
	calls []string // models requested, in order
}

func (p *scriptedProvider) ID() string { return p.id }

func (p *scriptedProvider) Respond(ctx context.Context, model string, req *Request) (string, error) {
	p.calls = append(p.calls, model)
	return p.reply, p.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	a := &scriptedProvider{id: "anthropic", reply: "from anthropic"}
	o := &scriptedProvider{id: "openai", reply: "from openai"}
	c := NewChain([]Provider{a, o}, []string{"anthropic/claude-sonnet-4-5", "openai/gpt-4o"})

	out, err := c.Respond(context.Background(), &Request{Input: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "from anthropic" {
		t.Errorf("out = %q", out)
	}
	if len(a.calls) != 1 || a.calls[0] != "claude-sonnet-4-5" {
		t.Errorf("anthropic calls = %v", a.calls)
	}
	if len(o.calls) != 0 {
		t.Errorf("openai called despite earlier success: %v", o.calls)
	}
}

func TestChainFallsThroughOnError(t *testing.T) {
	a := &scriptedProvider{id: "anthropic", err: errors.New("overloaded")}
	o := &scriptedProvider{id: "openai", reply: "from openai"}
	c := NewChain([]Provider{a, o}, []string{"anthropic/claude-sonnet-4-5", "openai/gpt-4o"})

	out, err := c.Respond(context.Background(), &Request{Input: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "from openai" {
		t.Errorf("out = %q", out)
	}
	if len(a.calls) != 1 || len(o.calls) != 1 {
		t.Errorf("calls = %v / %v", a.calls, o.calls)
	}
}

func TestChainSurfacesLastError(t *testing.T) {
	a := &scriptedProvider{id: "anthropic", err: errors.New("first failure")}
	o := &scriptedProvider{id: "openai", err: errors.New("second failure")}
	c := NewChain([]Provider{a, o}, []string{"anthropic/m1", "openai/m2"})

	_, err := c.Respond(context.Background(), &Request{Input: "hi"})
	if err == nil || err.Error() != "second failure" {
		t.Errorf("err = %v", err)
	}
}

func TestChainSkipsMalformedAndUnknownEntries(t *testing.T) {
	o := &scriptedProvider{id: "openai", reply: "ok"}
	c := NewChain([]Provider{o}, []string{
		"not-a-pair",
		"anthropic/claude-sonnet-4-5", // provider not loaded
		"openai/",
		"openai/gpt-4o",
	})

	out, err := c.Respond(context.Background(), &Request{Input: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("out = %q", out)
	}
	if len(o.calls) != 1 || o.calls[0] != "gpt-4o" {
		t.Errorf("calls = %v", o.calls)
	}
}

func TestChainEmptyList(t *testing.T) {
	c := NewChain(nil, nil)
	_, err := c.Respond(context.Background(), &Request{Input: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
}
