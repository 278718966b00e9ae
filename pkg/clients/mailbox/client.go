package mailbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/config"
)

// ErrNoMail indicates no message matched the subject pattern or none of the
// matching messages carried a zip attachment.
var ErrNoMail = errors.New("no matching mail found")

var errNoAttachment = errors.New("no zip attachment in message")

// Client exposes the mail-retrieval operation used by the pipeline.
type Client interface {
	FindAttachment(ctx context.Context) (archivePath, subject string, err error)
}

// IMAPClient fetches vendor mail over IMAP with TLS.
type IMAPClient struct {
	cfg     config.MailConfig
	saveDir string
	logger  *zap.Logger
}

// NewClient builds an IMAP mail client saving attachments into saveDir.
func NewClient(cfg config.MailConfig, saveDir string, logger *zap.Logger) *IMAPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IMAPClient{cfg: cfg, saveDir: saveDir, logger: logger}
}

// FindAttachment scans the newest messages of the inbox (newest first, up to
// the configured depth), picks the first one whose subject matches the
// configured pattern and saves its first .zip attachment locally. The mailbox
// is opened read-only; nothing is flagged or deleted.
func (c *IMAPClient) FindAttachment(ctx context.Context) (string, string, error) {
	conn, err := client.DialTLS(c.cfg.Server, nil)
	if err != nil {
		return "", "", fmt.Errorf("dial imap server %s: %w", c.cfg.Server, err)
	}
	defer func() { _ = conn.Logout() }()

	if err := conn.Login(c.cfg.Address, c.cfg.Password); err != nil {
		return "", "", fmt.Errorf("imap login: %w", err)
	}

	mbox, err := conn.Select("INBOX", true)
	if err != nil {
		return "", "", fmt.Errorf("select inbox: %w", err)
	}
	if mbox.Messages == 0 {
		return "", "", ErrNoMail
	}

	from := uint32(1)
	if c.cfg.ScanDepth > 0 && mbox.Messages > c.cfg.ScanDepth {
		from = mbox.Messages - c.cfg.ScanDepth + 1
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, mbox.Messages-from+1)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, messages)
	}()

	var fetched []*imap.Message
	for msg := range messages {
		fetched = append(fetched, msg)
	}
	if err := <-done; err != nil {
		return "", "", fmt.Errorf("fetch messages: %w", err)
	}

	for i := len(fetched) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		msg := fetched[i]
		if msg.Envelope == nil {
			continue
		}
		subject := msg.Envelope.Subject
		c.logger.Debug("checking message", zap.String("subject", subject))

		if !c.cfg.SubjectPattern.MatchString(subject) {
			continue
		}

		body := msg.GetBody(section)
		if body == nil {
			continue
		}

		path, err := c.saveZipAttachment(body)
		if errors.Is(err, errNoAttachment) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("save attachment of %q: %w", subject, err)
		}

		c.logger.Info("archive downloaded", zap.String("subject", subject), zap.String("path", path))
		return path, subject, nil
	}

	return "", "", ErrNoMail
}

func (c *IMAPClient) saveZipAttachment(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("walk message parts: %w", err)
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, err := header.Filename()
		if err != nil || !strings.HasSuffix(strings.ToLower(filename), ".zip") {
			continue
		}

		if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
			return "", fmt.Errorf("create save dir: %w", err)
		}

		target := filepath.Join(c.saveDir, filepath.Base(filename))
		dst, err := os.Create(target)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", target, err)
		}

		if _, err := io.Copy(dst, part.Body); err != nil {
			_ = dst.Close()
			return "", fmt.Errorf("write %s: %w", target, err)
		}
		if err := dst.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", target, err)
		}

		return target, nil
	}

	return "", errNoAttachment
}
