// Package tui is a thin terminal shell over the controllers. It renders
// snapshots and maps keys to controller calls; all state transitions and
// invariants live in the controller packages.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/feed"
	"github.com/glabrego/lemmer-cli/internal/inbox"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/session"
)

type tab int

const (
	tabFeed tab = iota
	tabReplies
	tabMentions
	tabMessages
)

func (t tab) String() string {
	switch t {
	case tabFeed:
		return "Feed"
	case tabReplies:
		return "Replies"
	case tabMentions:
		return "Mentions"
	case tabMessages:
		return "Messages"
	}
	return "?"
}

type mode int

const (
	modeBrowse mode = iota
	modeLogin
)

// Login is the slice of the login controller the shell drives.
type Login interface {
	Login(ctx context.Context, instance string, creds lemmy.Login) error
	Loading() bool
}

// Accounts is the slice of the account store the shell drives for
// switching and logging out.
type Accounts interface {
	Accounts() []account.Account
	Current() (account.Account, bool)
	SetCurrent(ctx context.Context, key account.Key) error
	RemoveCurrent(ctx context.Context) error
}

type stateUpdatedMsg struct{}

type loginDoneMsg struct{ err error }

type accountActionMsg struct {
	note string
	err  error
}

const (
	loginFieldInstance = iota
	loginFieldUsername
	loginFieldPassword
)

type Model struct {
	host    *lemmy.Host
	session *session.Controller
	feed    *feed.Controller
	inbox   *inbox.Controller

	login    Login
	accounts Accounts

	mode        mode
	loginInputs [3]textinput.Model
	loginFocus  int

	tab    tab
	cursor int
	width  int
	height int
	status string
}

func NewModel(host *lemmy.Host, sess *session.Controller, fd *feed.Controller, ib *inbox.Controller, login Login, accounts Accounts) Model {
	instance := textinput.New()
	instance.Placeholder = "lemmy.ml"

	username := textinput.New()
	username.Placeholder = "username or email"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	return Model{
		host:        host,
		session:     sess,
		feed:        fd,
		inbox:       ib,
		login:       login,
		accounts:    accounts,
		loginInputs: [3]textinput.Model{instance, username, password},
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.session.Updates():
		case <-m.feed.Updates():
		case <-m.inbox.Updates():
		}
		return stateUpdatedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateUpdatedMsg:
		m.cursor = clamp(m.cursor, m.rowCount())
		return m, m.waitForUpdate()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.status = "logged in"
		return m, nil

	case accountActionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.note
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeLogin {
			return m.handleLoginKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % 4
		m.cursor = 0
	case "shift+tab":
		m.tab = (m.tab + 3) % 4
		m.cursor = 0

	case "j", "down":
		m.cursor = clamp(m.cursor+1, m.rowCount())
	case "k", "up":
		m.cursor = clamp(m.cursor-1, m.rowCount())

	case "r":
		m.refreshCurrent()
	case "n":
		m.nextPageCurrent()
	case "R":
		m.session.Reload()

	case "L":
		m.openLogin()
	case "A":
		return m, m.switchAccount()
	case "o":
		return m, m.logout()

	case "u":
		if m.tab != tabFeed {
			m.inbox.UpdateUnreadOnly(!m.inbox.Filter().UnreadOnly)
			m.cursor = 0
		}
	case "a":
		if m.tab != tabFeed {
			m.requireLogin(m.inbox.MarkAllAsRead())
		}

	case "+":
		m.vote(lemmy.Upvote)
	case "-":
		if m.session.EnableDownvotes() {
			m.vote(lemmy.Downvote)
		} else {
			m.status = "downvotes are disabled on this instance"
		}
	case "s":
		m.save()
	case "x":
		if m.tab == tabFeed {
			if pv, ok := m.selectedPost(); ok {
				m.requireLogin(m.feed.DeletePost(pv))
			}
		}
	case "m":
		m.markRead()
	}
	return m, nil
}

func (m *Model) openLogin() {
	m.mode = modeLogin
	m.loginInputs[loginFieldInstance].SetValue(m.host.Instance())
	m.loginInputs[loginFieldUsername].SetValue("")
	m.loginInputs[loginFieldPassword].SetValue("")
	m.setLoginFocus(loginFieldInstance)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.status = ""
		return m, nil

	case "tab", "down":
		m.setLoginFocus((m.loginFocus + 1) % len(m.loginInputs))
		return m, nil
	case "shift+tab", "up":
		m.setLoginFocus((m.loginFocus + len(m.loginInputs) - 1) % len(m.loginInputs))
		return m, nil

	case "enter":
		if m.loginFocus < loginFieldPassword {
			m.setLoginFocus(m.loginFocus + 1)
			return m, nil
		}
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m *Model) setLoginFocus(i int) {
	m.loginFocus = i
	for j := range m.loginInputs {
		if j == i {
			m.loginInputs[j].Focus()
		} else {
			m.loginInputs[j].Blur()
		}
	}
}

func (m *Model) submitLogin() tea.Cmd {
	if m.login.Loading() {
		return nil
	}
	instance := m.loginInputs[loginFieldInstance].Value()
	creds := lemmy.Login{
		UsernameOrEmail: m.loginInputs[loginFieldUsername].Value(),
		Password:        m.loginInputs[loginFieldPassword].Value(),
	}
	if instance == "" || creds.UsernameOrEmail == "" || creds.Password == "" {
		m.status = "fill in every field"
		return nil
	}
	m.status = "logging in…"
	return func() tea.Msg {
		return loginDoneMsg{err: m.login.Login(context.Background(), instance, creds)}
	}
}

// switchAccount activates the stored account after the current one,
// wrapping around. The account stream then rebinds every controller.
func (m *Model) switchAccount() tea.Cmd {
	stored := m.accounts.Accounts()
	if len(stored) == 0 {
		m.status = "no stored accounts"
		return nil
	}
	next := stored[0]
	if current, ok := m.accounts.Current(); ok {
		for i, acct := range stored {
			if acct.Key() == current.Key() {
				next = stored[(i+1)%len(stored)]
				break
			}
		}
	}
	return func() tea.Msg {
		err := m.accounts.SetCurrent(context.Background(), next.Key())
		return accountActionMsg{note: "switched to " + next.Name + "@" + next.Instance, err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	if _, ok := m.accounts.Current(); !ok {
		m.status = "not logged in"
		return nil
	}
	return func() tea.Msg {
		return accountActionMsg{note: "logged out", err: m.accounts.RemoveCurrent(context.Background())}
	}
}

func (m *Model) refreshCurrent() {
	switch m.tab {
	case tabFeed:
		m.feed.Refresh()
	case tabReplies:
		m.inbox.ReloadReplies()
	case tabMentions:
		m.inbox.ReloadMentions()
	case tabMessages:
		m.inbox.ReloadMessages()
	}
	m.session.ReloadUnreadCounts()
}

func (m *Model) nextPageCurrent() {
	switch m.tab {
	case tabFeed:
		m.feed.NextPage()
	case tabReplies:
		m.inbox.NextRepliesPage()
	case tabMentions:
		m.inbox.NextMentionsPage()
	case tabMessages:
		m.inbox.NextMessagesPage()
	}
}

func (m *Model) vote(vote lemmy.VoteType) {
	switch m.tab {
	case tabFeed:
		if pv, ok := m.selectedPost(); ok {
			m.requireLogin(m.feed.LikePost(pv, vote))
		}
	case tabReplies:
		if v, ok := m.selectedReply(); ok {
			m.requireLogin(m.inbox.LikeReply(v, vote))
		}
	case tabMentions:
		if v, ok := m.selectedMention(); ok {
			m.requireLogin(m.inbox.LikeMention(v, vote))
		}
	}
}

func (m *Model) save() {
	switch m.tab {
	case tabFeed:
		if pv, ok := m.selectedPost(); ok {
			m.requireLogin(m.feed.SavePost(pv))
		}
	case tabReplies:
		if v, ok := m.selectedReply(); ok {
			m.requireLogin(m.inbox.SaveReply(v))
		}
	case tabMentions:
		if v, ok := m.selectedMention(); ok {
			m.requireLogin(m.inbox.SaveMention(v))
		}
	}
}

func (m *Model) markRead() {
	switch m.tab {
	case tabReplies:
		if v, ok := m.selectedReply(); ok {
			m.requireLogin(m.inbox.MarkReplyAsRead(v))
		}
	case tabMentions:
		if v, ok := m.selectedMention(); ok {
			m.requireLogin(m.inbox.MarkMentionAsRead(v))
		}
	case tabMessages:
		if v, ok := m.selectedMessage(); ok {
			m.requireLogin(m.inbox.MarkMessageAsRead(v))
		}
	}
}

// requireLogin translates the controllers' logged-out signal into a
// status hint instead of an error.
func (m *Model) requireLogin(dispatched bool) {
	if !dispatched {
		m.status = "log in first"
	}
}

func (m Model) rowCount() int {
	switch m.tab {
	case tabFeed:
		return len(m.feed.Posts())
	case tabReplies:
		return len(m.inbox.Replies())
	case tabMentions:
		return len(m.inbox.Mentions())
	case tabMessages:
		return len(m.inbox.Messages())
	}
	return 0
}

func (m Model) selectedPost() (lemmy.PostView, bool) {
	posts := m.feed.Posts()
	if m.cursor < 0 || m.cursor >= len(posts) {
		return lemmy.PostView{}, false
	}
	return posts[m.cursor], true
}

func (m Model) selectedReply() (lemmy.CommentReplyView, bool) {
	replies := m.inbox.Replies()
	if m.cursor < 0 || m.cursor >= len(replies) {
		return lemmy.CommentReplyView{}, false
	}
	return replies[m.cursor], true
}

func (m Model) selectedMention() (lemmy.PersonMentionView, bool) {
	mentions := m.inbox.Mentions()
	if m.cursor < 0 || m.cursor >= len(mentions) {
		return lemmy.PersonMentionView{}, false
	}
	return mentions[m.cursor], true
}

func (m Model) selectedMessage() (lemmy.PrivateMessageView, bool) {
	messages := m.inbox.Messages()
	if m.cursor < 0 || m.cursor >= len(messages) {
		return lemmy.PrivateMessageView{}, false
	}
	return messages[m.cursor], true
}

func clamp(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}
