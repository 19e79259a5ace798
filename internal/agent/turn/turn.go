// Package turn drives one inbound message to exactly one outbound
// reply. The pipeline evaluates fixed short-circuits in order: pairing
// gate, skill commands, persona gate, identity question, then the full
// model round trip with an optional action pass.
package turn

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/agent/actions"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/config"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/persona"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/provider"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/skills"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/store"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/workspace"
)

// Command prefixes recognized before any model involvement
const (
	InstallPrefix = "/skill install"
	RestorePrefix = "/skill restore"
)

// historyLimit is how many recent messages feed the prompt
const historyLimit = 20

// errorReply is the single user-visible message for any unhandled
// failure inside a turn
const errorReply = "Sorry, something went wrong while handling that message. Please try again."

// genericActionReply stands in when the second pass returns nothing
const genericActionReply = "Action completed."

// emptyReply stands in when a no-action first pass returns nothing
const emptyReply = "Sorry, I could not come up with a reply to that."

var identityRe = regexp.MustCompile(`(?i)\b(who are you|what are you|your name|who am i talking to)\b`)

// Model is the subset of the provider chain the engine needs
type Model interface {
	Respond(ctx context.Context, req *provider.Request) (string, error)
}

// Sender delivers a reply through a channel
type Sender interface {
	Send(ctx context.Context, msg channels.OutboundMessage) error
}

// Engine orchestrates turns
type Engine struct {
	cfg    *config.Config
	store  *store.Store
	ws     *workspace.Workspace
	skills *skills.Store
	model  Model
	runner *actions.Runner

	senders map[string]Sender
	locks   keyedMutex
}

// New creates a turn engine
func New(cfg *config.Config, st *store.Store, ws *workspace.Workspace, sk *skills.Store, model Model, runner *actions.Runner) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   st,
		ws:      ws,
		skills:  sk,
		model:   model,
		runner:  runner,
		senders: make(map[string]Sender),
	}
}

// RegisterSender binds a channel id to its outbound delivery
func (e *Engine) RegisterSender(channelID string, s Sender) {
	e.senders[channelID] = s
}

// HandleInbound processes one inbound message. Turns for the same
// (channel, sender) pair are serialized; different senders proceed
// concurrently. Exactly one reply is always sent.
func (e *Engine) HandleInbound(ctx context.Context, msg channels.InboundMessage) {
	unlock := e.locks.lock(msg.Channel + "\x00" + msg.SenderID)
	defer unlock()

	reply := e.runTurn(ctx, msg)
	if reply == "" {
		reply = errorReply
	}
	e.deliver(ctx, msg, reply)
}

// runTurn runs the pipeline; any panic or error collapses to "" which
// the caller turns into the generic error reply
func (e *Engine) runTurn(ctx context.Context, msg channels.InboundMessage) (reply string) {
	defer func() {
		if p := recover(); p != nil {
			logging.Errorf("[turn] panic handling message from %s/%s: %v", msg.Channel, msg.SenderID, p)
			reply = errorReply
		}
	}()

	out, err := e.process(ctx, msg)
	if err != nil {
		logging.Errorf("[turn] %s/%s: %v", msg.Channel, msg.SenderID, err)
		return errorReply
	}
	return out
}

func (e *Engine) process(ctx context.Context, msg channels.InboundMessage) (string, error) {
	text := strings.TrimSpace(msg.Text)

	// 1. Pairing gate. No session, no persistence until approved.
	pairing, err := e.store.UpsertPairing(msg.Channel, msg.SenderID)
	if err != nil {
		return "", fmt.Errorf("pairing lookup failed: %w", err)
	}
	if !pairing.Approved {
		return fmt.Sprintf(
			"This device is not paired yet. Ask the gateway owner to approve channel %q sender %q with code %s.",
			msg.Channel, msg.SenderID, pairing.Code), nil
	}

	// 2 & 3. Skill commands short-circuit before any model involvement.
	if strings.HasPrefix(text, InstallPrefix) {
		return e.installSkillCommand(text), nil
	}
	if strings.HasPrefix(text, RestorePrefix) {
		return e.restoreSkillCommand(text), nil
	}

	// 4. Session + inbound persistence, then the persona gate.
	sess, err := e.store.GetOrCreateSession(msg.Channel, msg.SenderID)
	if err != nil {
		return "", fmt.Errorf("session lookup failed: %w", err)
	}
	if _, err := e.store.AddMessage(sess.ID, store.DirectionInbound, text); err != nil {
		return "", fmt.Errorf("failed to persist inbound message: %w", err)
	}

	if reply, done := e.personaGate(sess, text); done {
		return reply, nil
	}

	// 5. Identity questions never reach the model.
	if identityRe.MatchString(text) {
		answer := e.ws.IdentityAnswer()
		e.recordMemory("identity_answer", "served", "")
		e.persistOutbound(sess.ID, answer)
		return answer, nil
	}

	// 6. Full round trip.
	return e.roundTrip(ctx, sess, text)
}

// personaGate resolves assistant name, user name and language before
// normal conversation starts. Returns done=true when it produced the
// turn's reply.
func (e *Engine) personaGate(sess *store.Session, text string) (string, bool) {
	current := persona.FromWorkspace(e.ws, e.cfg)
	if current.Complete() {
		return "", false
	}

	parsed := persona.Parse(text)
	if parsed.Empty() {
		reply := "Before we start, tell me: what should I call myself, what language should we speak, and what is your name?"
		e.persistOutbound(sess.ID, reply)
		return reply, true
	}

	merged := persona.Merge(current, parsed)
	if err := persona.Apply(merged, e.ws, e.cfg); err != nil {
		logging.Errorf("[turn] persona apply failed: %v", err)
		e.recordMemory("persona", "failed", err.Error())
	}

	var reply string
	if merged.Complete() {
		name := merged.AssistantName
		if name == "" {
			name = e.cfg.Assistant.Name
		}
		if name == "" {
			name = "Gnami"
		}
		reply = fmt.Sprintf("All set. I am %s, I will speak %s, and I will call you %s.",
			name, merged.Language, merged.UserName)
	} else {
		var missing []string
		if merged.UserName == "" {
			missing = append(missing, "your name")
		}
		if merged.Language == "" {
			missing = append(missing, "the language we should speak")
		}
		reply = fmt.Sprintf("Thanks, noted. I still need %s.", strings.Join(missing, " and "))
	}
	e.persistOutbound(sess.ID, reply)
	return reply, true
}

// roundTrip is the default path: first model pass, optional action
// execution, optional summarizing second pass.
func (e *Engine) roundTrip(ctx context.Context, sess *store.Session, text string) (string, error) {
	req := &provider.Request{
		System:  e.systemPrompt(),
		History: e.history(sess.ID),
		Input:   text,
	}

	first, err := e.model.Respond(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	parsed := actions.Parse(first)
	var reply string
	if len(parsed) == 0 {
		reply = actions.Strip(first)
		if reply == "" {
			reply = emptyReply
		}
	} else {
		results := e.runner.ExecuteAll(ctx, parsed)
		summary := actions.Summarize(results)

		second, err := e.model.Respond(ctx, &provider.Request{
			System:  req.System,
			History: req.History,
			Input: fmt.Sprintf(
				"%s\n\n%s\n\nSummarize the results for the user. Do not emit any new action blocks.",
				text, summary),
		})
		if err != nil {
			return "", fmt.Errorf("second model pass failed: %w", err)
		}
		reply = actions.Strip(second)
		if reply == "" {
			reply = genericActionReply
		}
	}

	e.persistOutbound(sess.ID, reply)
	e.rememberExchange(text, reply)
	return reply, nil
}

// systemPrompt assembles persona, workspace documents and the action
// protocol instructions
func (e *Engine) systemPrompt() string {
	var parts []string
	if ctx := e.ws.BuildContext(); ctx != "" {
		parts = append(parts, ctx)
	}
	if catalog := e.skills.Catalog(); catalog != "" {
		parts = append(parts, catalog)
	}
	parts = append(parts, actionInstructions)
	return strings.Join(parts, "\n\n---\n\n")
}

const actionInstructions = "To perform a side effect, emit a fenced block tagged `" + actions.Marker + "` " +
	"containing one JSON object with a `type` of `shell`, `install_skill` or `integration`. " +
	"At most 3 actions are executed per reply."

// history returns the recent conversation, excluding the inbound
// message persisted this turn
func (e *Engine) history(sessionID string) []provider.Message {
	msgs, err := e.store.RecentMessages(sessionID, historyLimit)
	if err != nil {
		logging.Warnf("[turn] failed to load history: %v", err)
		return nil
	}
	if len(msgs) > 0 {
		msgs = msgs[:len(msgs)-1]
	}

	out := make([]provider.Message, 0, len(msgs))
	for _, m := range msgs {
		role := provider.RoleUser
		if m.Direction == store.DirectionOutbound {
			role = provider.RoleAssistant
		}
		out = append(out, provider.Message{Role: role, Content: m.Content})
	}
	return out
}

// installSkillCommand handles "/skill install <name>\n<content>"
func (e *Engine) installSkillCommand(text string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(text, InstallPrefix))
	name, content, _ := strings.Cut(rest, "\n")
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	if name == "" || content == "" {
		return "Usage: " + InstallPrefix + " <name>\\n<skill content>"
	}

	if _, err := e.skills.Install(name, content); err != nil {
		return fmt.Sprintf("Could not install skill: %v", err)
	}

	// Best effort: remember the skill so it can be restored later.
	// A memory failure is an event, not an error the user sees.
	if err := e.ws.UpsertMemorySection("Skill: "+name, content); err != nil {
		e.recordMemory("skill:"+name, "failed", err.Error())
	} else {
		e.recordMemory("skill:"+name, "saved", "")
	}
	return fmt.Sprintf("Skill %q installed.", name)
}

// restoreSkillCommand handles "/skill restore <name>"
func (e *Engine) restoreSkillCommand(text string) string {
	name := strings.TrimSpace(strings.TrimPrefix(text, RestorePrefix))
	if name == "" {
		return "Usage: " + RestorePrefix + " <name>"
	}

	if e.skills.Has(name) {
		return fmt.Sprintf("Skill %q is already installed.", name)
	}

	content := e.ws.ReadMemorySection("Skill: " + name)
	if content == "" {
		return fmt.Sprintf("No remembered skill named %q.", name)
	}

	if _, err := e.skills.Install(name, content); err != nil {
		return fmt.Sprintf("Could not restore skill: %v", err)
	}
	return fmt.Sprintf("Skill %q restored from memory.", name)
}

// persistOutbound appends the reply to the session log. Persistence
// failure is logged, not surfaced: the reply still goes out.
func (e *Engine) persistOutbound(sessionID, reply string) {
	if _, err := e.store.AddMessage(sessionID, store.DirectionOutbound, reply); err != nil {
		logging.Errorf("[turn] failed to persist outbound message: %v", err)
	}
}

// rememberExchange writes the latest exchange into the memory document,
// best effort
func (e *Engine) rememberExchange(input, reply string) {
	body := fmt.Sprintf("User: %s\n%s: %s", input, e.assistantName(), reply)
	if err := e.ws.UpsertMemorySection("Last Exchange", body); err != nil {
		e.recordMemory("exchange", "failed", err.Error())
		return
	}
	e.recordMemory("exchange", "saved", "")
}

func (e *Engine) assistantName() string {
	if e.cfg.Assistant.Name != "" {
		return e.cfg.Assistant.Name
	}
	return "Assistant"
}

// recordMemory records a memory write outcome for observability only
func (e *Engine) recordMemory(key, status, detail string) {
	if err := e.store.AddMemoryEvent(key, status, detail); err != nil {
		logging.Debugf("[turn] failed to record memory event: %v", err)
	}
}

// deliver sends the reply through the message's channel
func (e *Engine) deliver(ctx context.Context, msg channels.InboundMessage, reply string) {
	sender, ok := e.senders[msg.Channel]
	if !ok {
		logging.Errorf("[turn] no sender registered for channel %q", msg.Channel)
		return
	}
	err := sender.Send(ctx, channels.OutboundMessage{
		Channel:  msg.Channel,
		SenderID: msg.SenderID,
		Text:     reply,
	})
	if err != nil {
		logging.Errorf("[turn] failed to deliver reply on %s: %v", msg.Channel, err)
	}
}
