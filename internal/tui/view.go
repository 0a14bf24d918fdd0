package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/lemmer-cli/internal/request"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	unreadStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.mode == modeLogin {
		b.WriteString(m.loginView())
		b.WriteString("\n")
		b.WriteString(m.footerView())
		return b.String()
	}

	switch m.tab {
	case tabFeed:
		b.WriteString(m.feedView())
	case tabReplies:
		b.WriteString(m.repliesView())
	case tabMentions:
		b.WriteString(m.mentionsView())
	case tabMessages:
		b.WriteString(m.messagesView())
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render(fmt.Sprintf("lemmer @ %s", m.host.Instance()))
	if unread := m.session.UnreadCountTotal(); unread > 0 {
		title += unreadStyle.Render(fmt.Sprintf("  (%d unread)", unread))
	}

	tabs := make([]string, 0, 4)
	for t := tabFeed; t <= tabMessages; t++ {
		style := inactiveTab
		if t == m.tab {
			style = activeTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return title + "\n" + strings.Join(tabs, "  ")
}

func (m Model) feedView() string {
	posts := m.feed.Posts()
	if note := phaseNote(m.feed.Fetching().Phase(), m.feed.Fetching().Err(), len(posts)); note != "" {
		return note
	}

	var b strings.Builder
	for i, pv := range posts {
		line := fmt.Sprintf("%s %4d  %s", voteMarker(pv.MyVote), pv.Counts.Score, pv.Post.Name)
		if pv.Saved {
			line += " *"
		}
		if pv.Post.Deleted {
			line = faintStyle.Render(line + " [deleted]")
		}
		line += faintStyle.Render("  " + pv.Community.Name)
		b.WriteString(m.renderRow(i, line))
	}
	return b.String()
}

func (m Model) repliesView() string {
	replies := m.inbox.Replies()
	if note := phaseNote(m.inbox.FetchingReplies().Phase(), m.inbox.FetchingReplies().Err(), len(replies)); note != "" {
		return note
	}

	var b strings.Builder
	for i, v := range replies {
		b.WriteString(m.renderRow(i, inboxLine(v.Creator.Name, v.Comment.Content, v.CommentReply.Read, v.MyVote)))
	}
	return b.String()
}

func (m Model) mentionsView() string {
	mentions := m.inbox.Mentions()
	if note := phaseNote(m.inbox.FetchingMentions().Phase(), m.inbox.FetchingMentions().Err(), len(mentions)); note != "" {
		return note
	}

	var b strings.Builder
	for i, v := range mentions {
		b.WriteString(m.renderRow(i, inboxLine(v.Creator.Name, v.Comment.Content, v.PersonMention.Read, v.MyVote)))
	}
	return b.String()
}

func (m Model) messagesView() string {
	messages := m.inbox.Messages()
	if note := phaseNote(m.inbox.FetchingMessages().Phase(), m.inbox.FetchingMessages().Err(), len(messages)); note != "" {
		return note
	}

	var b strings.Builder
	for i, v := range messages {
		b.WriteString(m.renderRow(i, inboxLine(v.Creator.Name, v.PrivateMessage.Content, v.PrivateMessage.Read, 0)))
	}
	return b.String()
}

func (m Model) renderRow(i int, line string) string {
	if i == m.cursor {
		line = selectedStyle.Render(line)
	}
	return line + "\n"
}

func (m Model) loginView() string {
	labels := [3]string{"instance", "username", "password"}

	var b strings.Builder
	b.WriteString(titleStyle.Render("log in"))
	b.WriteString("\n\n")
	for i, input := range m.loginInputs {
		b.WriteString(fmt.Sprintf("%s %s\n", faintStyle.Render(labels[i]+":"), input.View()))
	}
	return b.String()
}

func (m Model) footerView() string {
	help := "tab switch · j/k move · r refresh · n more · +/- vote · s save · m read · a read all · u unread-only · L login · A switch · o logout · q quit"
	if m.mode == modeLogin {
		help = "enter next/submit · tab cycle fields · esc cancel"
	}
	if m.status != "" {
		return statusStyle.Render(m.status) + "\n" + faintStyle.Render(help)
	}
	return faintStyle.Render(help)
}

func inboxLine(creator, content string, read bool, myVote int) string {
	line := fmt.Sprintf("%s %s: %s", voteMarker(myVote), creator, truncate(content, 80))
	if !read {
		return unreadStyle.Render("● " + line)
	}
	return "  " + line
}

func phaseNote(phase request.Phase, err error, items int) string {
	switch phase {
	case request.Loading:
		if items == 0 {
			return faintStyle.Render("loading…")
		}
	case request.Failure:
		return statusStyle.Render(fmt.Sprintf("request failed: %v (r to retry)", err))
	case request.Empty:
		if items == 0 {
			return faintStyle.Render("nothing here yet")
		}
	}
	return ""
}

func voteMarker(myVote int) string {
	switch myVote {
	case 1:
		return "▲"
	case -1:
		return "▼"
	}
	return " "
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
