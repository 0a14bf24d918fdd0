package lemmy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UserAgent identifies this client on every outgoing request.
const UserAgent = "lemmer-cli"

// StatusError is returned when the server answered with a non-2xx status.
// A StatusError means the request reached the instance; transport failures
// surface as *url.Error instead. Login relies on that distinction.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// Client talks to one instance's HTTP API. It is safe for concurrent use
// and is rebuilt, never mutated, when the bound instance changes.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for a base URL ending in /api/{version}.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// NewInstanceClient builds a client addressing https://{instance}/api/v3.
func NewInstanceClient(instance string, httpClient *http.Client) *Client {
	return NewClient(fmt.Sprintf("https://%s/api/%s", strings.TrimSpace(instance), apiVersion), httpClient)
}

func (c *Client) Login(ctx context.Context, form Login) (LoginResponse, error) {
	var out LoginResponse
	err := c.send(ctx, http.MethodPost, "/user/login", form, &out)
	return out, err
}

func (c *Client) GetSite(ctx context.Context, auth string) (GetSiteResponse, error) {
	q := make(url.Values)
	setAuth(q, auth)
	var out GetSiteResponse
	err := c.get(ctx, "/site", q, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, form GetPost) (GetPostResponse, error) {
	var out GetPostResponse
	err := c.get(ctx, "/post", form.query(), &out)
	return out, err
}

func (c *Client) GetPosts(ctx context.Context, form GetPosts) (GetPostsResponse, error) {
	var out GetPostsResponse
	err := c.get(ctx, "/post/list", form.query(), &out)
	return out, err
}

func (c *Client) GetPersonDetails(ctx context.Context, form GetPersonDetails) (GetPersonDetailsResponse, error) {
	var out GetPersonDetailsResponse
	err := c.get(ctx, "/user", form.query(), &out)
	return out, err
}

func (c *Client) GetReplies(ctx context.Context, form GetInbox) (GetRepliesResponse, error) {
	var out GetRepliesResponse
	err := c.get(ctx, "/user/replies", form.query(), &out)
	return out, err
}

func (c *Client) GetPersonMentions(ctx context.Context, form GetInbox) (GetPersonMentionsResponse, error) {
	var out GetPersonMentionsResponse
	err := c.get(ctx, "/user/mention", form.query(), &out)
	return out, err
}

func (c *Client) GetPrivateMessages(ctx context.Context, form GetInbox) (PrivateMessagesResponse, error) {
	var out PrivateMessagesResponse
	err := c.get(ctx, "/private_message/list", form.query(), &out)
	return out, err
}

func (c *Client) GetUnreadCount(ctx context.Context, auth string) (UnreadCountResponse, error) {
	q := make(url.Values)
	setAuth(q, auth)
	var out UnreadCountResponse
	err := c.get(ctx, "/user/unread_count", q, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, form CreatePost) (PostResponse, error) {
	var out PostResponse
	err := c.send(ctx, http.MethodPost, "/post", form, &out)
	return out, err
}

func (c *Client) CreateComment(ctx context.Context, form CreateComment) (CommentResponse, error) {
	var out CommentResponse
	err := c.send(ctx, http.MethodPost, "/comment", form, &out)
	return out, err
}

func (c *Client) LikePost(ctx context.Context, form CreatePostLike) (PostResponse, error) {
	var out PostResponse
	err := c.send(ctx, http.MethodPost, "/post/like", form, &out)
	return out, err
}

func (c *Client) LikeComment(ctx context.Context, form CreateCommentLike) (CommentResponse, error) {
	var out CommentResponse
	err := c.send(ctx, http.MethodPost, "/comment/like", form, &out)
	return out, err
}

func (c *Client) SavePost(ctx context.Context, form SavePost) (PostResponse, error) {
	var out PostResponse
	err := c.send(ctx, http.MethodPut, "/post/save", form, &out)
	return out, err
}

func (c *Client) SaveComment(ctx context.Context, form SaveComment) (CommentResponse, error) {
	var out CommentResponse
	err := c.send(ctx, http.MethodPut, "/comment/save", form, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, form DeletePost) (PostResponse, error) {
	var out PostResponse
	err := c.send(ctx, http.MethodPost, "/post/delete", form, &out)
	return out, err
}

func (c *Client) BlockCommunity(ctx context.Context, form BlockCommunity) (BlockCommunityResponse, error) {
	var out BlockCommunityResponse
	err := c.send(ctx, http.MethodPost, "/community/block", form, &out)
	return out, err
}

func (c *Client) BlockPerson(ctx context.Context, form BlockPerson) (BlockPersonResponse, error) {
	var out BlockPersonResponse
	err := c.send(ctx, http.MethodPost, "/user/block", form, &out)
	return out, err
}

func (c *Client) MarkCommentReplyAsRead(ctx context.Context, form MarkCommentReplyAsRead) (CommentReplyResponse, error) {
	var out CommentReplyResponse
	err := c.send(ctx, http.MethodPost, "/comment/mark_as_read", form, &out)
	return out, err
}

func (c *Client) MarkPersonMentionAsRead(ctx context.Context, form MarkPersonMentionAsRead) (PersonMentionResponse, error) {
	var out PersonMentionResponse
	err := c.send(ctx, http.MethodPost, "/user/mention/mark_as_read", form, &out)
	return out, err
}

func (c *Client) MarkPrivateMessageAsRead(ctx context.Context, form MarkPrivateMessageAsRead) (PrivateMessageResponse, error) {
	var out PrivateMessageResponse
	err := c.send(ctx, http.MethodPost, "/private_message/mark_as_read", form, &out)
	return out, err
}

func (c *Client) MarkAllAsRead(ctx context.Context, form MarkAllAsRead) (GetRepliesResponse, error) {
	var out GetRepliesResponse
	err := c.send(ctx, http.MethodPost, "/user/mark_all_as_read", form, &out)
	return out, err
}

func (c *Client) CreatePrivateMessage(ctx context.Context, form CreatePrivateMessage) (PrivateMessageResponse, error) {
	var out PrivateMessageResponse
	err := c.send(ctx, http.MethodPost, "/private_message", form, &out)
	return out, err
}

func (c *Client) SaveUserSettings(ctx context.Context, form SaveUserSettings) (LoginResponse, error) {
	var out LoginResponse
	err := c.send(ctx, http.MethodPut, "/user/save_user_settings", form, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	fullPath := path
	if encoded := query.Encode(); encoded != "" {
		fullPath += "?" + encoded
	}
	req, err := c.newRequest(ctx, http.MethodGet, fullPath, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) send(ctx context.Context, method, path string, form, out any) error {
	payload, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}
