// ABOUTME: Chat session state and slash-command handling for the REPL
// ABOUTME: Plain lines become sends; the Mode is resolved from the session toggles

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/diagram"
	"github.com/2389/coven-chat/internal/prompt"
	"github.com/2389/coven-chat/internal/send"
	"github.com/2389/coven-chat/internal/store"
)

type chatSession struct {
	app        *app
	out        io.Writer
	opts       send.Options
	openChat   bool // current conversation was opened with /open
	confluence bool
	nextImage  bool // one-shot: next message asks for an image
}

func newChatSession(a *app, out io.Writer) *chatSession {
	return &chatSession{app: a, out: out}
}

func (s *chatSession) promptLabel() string {
	var tags []string
	if s.openChat {
		tags = append(tags, "open")
	}
	if s.opts.Attachment {
		tags = append(tags, "attach")
	}
	if p := s.app.store.Read().ActivePrompt; p != "" {
		tags = append(tags, p)
	}
	if !s.opts.UseStreaming {
		tags = append(tags, "sync")
	}
	if len(tags) == 0 {
		return "> "
	}
	return "[" + strings.Join(tags, "|") + "]> "
}

// handle runs one input line. Returns true when the session should end.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.sendLine(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		s.printHelp()
	case "/open":
		if err := s.openConversation(ctx); err != nil {
			s.errorf("%v", err)
		}
	case "/confluence":
		s.confluence = arg != "off"
		s.infof("confluence search %s", onOff(s.confluence))
	case "/stream":
		switch arg {
		case "on":
			s.opts.UseStreaming = true
		case "off":
			s.opts.UseStreaming = false
		default:
			s.errorf("usage: /stream on|off")
			return false
		}
		s.infof("streaming %s", onOff(s.opts.UseStreaming))
	case "/image":
		s.nextImage = true
		s.infof("next message asks for an image")
	case "/attach":
		s.opts.Attachment = !s.opts.Attachment
		s.infof("attachment %s", onOff(s.opts.Attachment))
	case "/prompt":
		s.setPrompt(arg)
	case "/docs":
		s.setDocs(arg)
	case "/score":
		s.score(ctx, arg)
	case "/diagram":
		s.showDiagram()
	case "/faults":
		s.showFaults()
	case "/reset":
		s.app.store.Reset()
		s.openChat = false
		s.infof("state cleared")
	default:
		s.errorf("unknown command %s (try /help)", cmd)
	}
	return false
}

func (s *chatSession) sendLine(ctx context.Context, text string) {
	msg := store.Message{
		Role:               store.RoleUser,
		Content:            text,
		IsOpenChat:         s.openChat,
		IsConfluenceSearch: s.openChat && s.confluence,
	}

	opts := s.opts
	if s.nextImage {
		opts.UseStreaming = false
		opts.Image = true
		s.nextImage = false
	}

	res := s.app.sender.Send(ctx, msg, send.ModeFor(msg, opts))
	if res.Fault != nil {
		s.errorf("server error %d recorded (see /faults)", res.Fault.Status)
	}
}

func (s *chatSession) openConversation(ctx context.Context) error {
	conv, err := s.app.dir.CreateOpenConversation(ctx)
	if err != nil {
		return err
	}
	s.openChat = true
	s.infof("open conversation %s", conv.ID)
	return nil
}

func (s *chatSession) setPrompt(name string) {
	if name == "" || name == "off" {
		s.app.store.ResetActivePrompt()
		s.infof("prompt cleared")
		return
	}
	if !prompt.Known(name) {
		s.errorf("unknown prompt %q, one of: %s", name, strings.Join(prompt.Names(), ", "))
		return
	}
	s.app.store.SetActivePrompt(name)
	s.infof("prompt %q applies to the next plain streamed message", name)
}

func (s *chatSession) setDocs(arg string) {
	var ids []string
	for _, id := range strings.Split(arg, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	s.app.store.SetDocIDList(ids)
	if len(ids) == 0 {
		s.infof("document filter cleared")
		return
	}
	s.infof("searching documents: %s", strings.Join(ids, ", "))
}

func (s *chatSession) score(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		s.errorf("usage: /score <number>")
		return
	}
	if err := s.app.dir.ScoreConversation(ctx, n); err != nil {
		s.errorf("%v", err)
		return
	}
	s.infof("thanks for the feedback")
}

// showDiagram extracts the diagram from the latest assistant reply.
func (s *chatSession) showDiagram() {
	conv, ok := s.app.store.Read().ActiveConversation()
	if ok {
		for i := len(conv.Messages) - 1; i >= 0; i-- {
			m := conv.Messages[i]
			if m.Role != store.RoleAssistant {
				continue
			}
			if _, err := diagram.UpdateFromMarkdown(s.app.store, m.Content); err != nil {
				s.errorf("%v", err)
				return
			}
			break
		}
	}

	content := s.app.store.Read().DiagramContent
	if content == "" {
		s.infof("no diagram yet (try /prompt Diagram)")
		return
	}
	fmt.Fprintln(s.out, color.GreenString(content))
}

func (s *chatSession) showFaults() {
	list := s.app.faults.List()
	if len(list) == 0 {
		s.infof("no faults")
		return
	}
	for _, f := range list {
		body := truncate(f.Message, 120)
		fmt.Fprintf(s.out, "%s %s %s x%d\n  %s\n",
			color.HiBlackString(f.At.Format("15:04:05")),
			color.RedString("%d", f.Status),
			color.HiBlackString(f.ContentType),
			f.Count,
			body)
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (s *chatSession) printHelp() {
	fmt.Fprint(s.out, `Commands:
  /open               start an open search conversation
  /confluence on|off  search Confluence instead of the web in open conversations
  /stream on|off      toggle streamed replies
  /image              ask for an image with the next message
  /attach             toggle answers against the attached document
  /prompt <name>      apply a prompt template (User Story, Epic, Diagram) or "off"
  /docs a,b           restrict plain sends to these document ids
  /score <n>          score the active conversation
  /diagram            show the diagram from the latest reply
  /faults             list server faults
  /reset              clear all state
  /quit               leave
`)
}

func (s *chatSession) infof(format string, args ...any) {
	fmt.Fprintln(s.out, color.CyanString(format, args...))
}

func (s *chatSession) errorf(format string, args ...any) {
	fmt.Fprintln(s.out, color.RedString(format, args...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
