package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"podocs/internal"
	"podocs/internal/config"
)

// Connector reads unseen messages over IMAP. All operations are UID-based so
// a mailbox that changes between search and fetch cannot shift message
// identities, and bodies are fetched with BODY.PEEK: only the explicit store
// at the end marks messages seen, and only when IMAP_MARK_SEEN asks for it.
type Connector struct {
	cfg config.Config
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}
	return &Connector{cfg: cfg}, nil
}

func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	client, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if err := client.Login(c.cfg.IMAPUser, c.cfg.IMAPPassword); err != nil {
		return nil, err
	}
	if _, err := client.Select(label, false); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := client.UidSearch(criteria)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > max {
		uids = uids[len(uids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}
	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() { done <- client.UidFetch(seqset, items, ch) }()

	var out []internal.FetchedMailMessage
	var fetched []uint32
	for msg := range ch {
		m, ok, err := buildMessage(msg, section)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, m)
		fetched = append(fetched, msg.Uid)
	}
	if err := <-done; err != nil {
		return nil, err
	}

	if c.cfg.IMAPMarkSeen && len(fetched) > 0 {
		seen := new(imap.SeqSet)
		seen.AddNum(fetched...)
		op := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := client.UidStore(seen, op, []interface{}{imap.SeenFlag}, nil); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (c *Connector) dial() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.cfg.IMAPHost, c.cfg.IMAPPort)
	if c.cfg.IMAPSecure {
		return imapclient.DialTLS(addr, &tls.Config{ServerName: c.cfg.IMAPHost})
	}
	return imapclient.Dial(addr)
}

func buildMessage(msg *imap.Message, section *imap.BodySectionName) (internal.FetchedMailMessage, bool, error) {
	if msg == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	body := msg.GetBody(section)
	if body == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return internal.FetchedMailMessage{}, false, err
	}

	m := internal.FetchedMailMessage{
		Provider:   "imap",
		Raw:        raw,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if !msg.InternalDate.IsZero() {
		m.ReceivedAt = msg.InternalDate.UTC().Format(time.RFC3339)
	}
	if env := msg.Envelope; env != nil {
		m.MessageID = env.MessageId
		m.Subject = env.Subject
		m.From = joinAddresses(env.From)
	}
	if m.MessageID == "" {
		m.MessageID = fmt.Sprintf("imap-%d", msg.Uid)
	}
	return m, true, nil
}

func joinAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		email := strings.Trim(a.MailboxName+"@"+a.HostName, "@")
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, email))
		} else {
			parts = append(parts, email)
		}
	}
	return strings.Join(parts, ", ")
}
