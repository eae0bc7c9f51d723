package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/email"
)

type memoryInApp struct {
	items []model.Notification
	err   error
}

func (s *memoryInApp) Insert(_ context.Context, n model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, n)
	return nil
}

type memoryContacts struct {
	contacts   map[string]model.Contact
	moderators []model.Contact
}

func (s *memoryContacts) Get(_ context.Context, userID string) (model.Contact, error) {
	c, ok := s.contacts[userID]
	if !ok {
		return model.Contact{}, apperr.ErrNotFound
	}
	return c, nil
}

func (s *memoryContacts) ListModerators(context.Context) ([]model.Contact, error) {
	return s.moderators, nil
}

type recordingEmail struct {
	sent []email.Message
	err  error
}

func (s *recordingEmail) Send(_ context.Context, msg email.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "email-1", nil
}

type chatMessage struct {
	chatID int64
	text   string
	url    string
}

type recordingChat struct {
	sent []chatMessage
}

func (s *recordingChat) SendLink(_ context.Context, chatID int64, text, _, url string) error {
	s.sent = append(s.sent, chatMessage{chatID: chatID, text: text, url: url})
	return nil
}

func newTestDispatcher(ch Channels) *Dispatcher {
	d := NewDispatcher(ch, nil)
	d.now = func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) }
	d.newID = func() string { return "n1" }
	return d
}

func TestNotifyPetitionStatusChangeUsesEveryChannel(t *testing.T) {
	chatID := int64(777)
	inApp := &memoryInApp{}
	mail := &recordingEmail{}
	chat := &recordingChat{}
	d := newTestDispatcher(Channels{
		InApp: inApp,
		Contacts: &memoryContacts{contacts: map[string]model.Contact{
			"u1": {UserID: "u1", DisplayName: "Amina", Email: "amina@example.com", TelegramChatID: &chatID},
		}},
		Email:         mail,
		Telegram:      chat,
		PublicBaseURL: "https://3arida.example/",
	})

	err := d.NotifyPetitionStatusChange(context.Background(), PetitionStatusChange{
		PetitionID:    "p1",
		CreatorID:     "u1",
		PetitionTitle: "Clean the river",
		NewStatus:     enums.PetitionStatusRejected,
		Notes:         "Missing sources",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(inApp.items) != 1 {
		t.Fatalf("expected one in-app record, got %d", len(inApp.items))
	}
	rec := inApp.items[0]
	if rec.UserID != "u1" || rec.Kind != enums.NotificationKindPetitionStatus || rec.PetitionID == nil || *rec.PetitionID != "p1" {
		t.Fatalf("unexpected in-app record: %+v", rec)
	}
	if !strings.Contains(rec.Body, "Missing sources") {
		t.Fatalf("expected moderator notes in body, got %q", rec.Body)
	}

	if len(mail.sent) != 1 || mail.sent[0].To[0] != "amina@example.com" {
		t.Fatalf("unexpected email deliveries: %+v", mail.sent)
	}
	if !strings.Contains(mail.sent[0].Text, "https://3arida.example/petitions/p1") {
		t.Fatalf("expected petition link in email, got %q", mail.sent[0].Text)
	}

	if len(chat.sent) != 1 || chat.sent[0].chatID != chatID {
		t.Fatalf("unexpected telegram deliveries: %+v", chat.sent)
	}
}

func TestNotifySkipsExternalChannelsWithoutContact(t *testing.T) {
	inApp := &memoryInApp{}
	mail := &recordingEmail{}
	d := newTestDispatcher(Channels{
		InApp:    inApp,
		Contacts: &memoryContacts{},
		Email:    mail,
	})

	err := d.NotifyAppealStatus(context.Background(), AppealEvent{
		AppealID:    "a1",
		RecipientID: "u2",
		Status:      enums.AppealStatusResolved,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(inApp.items) != 1 || len(mail.sent) != 0 {
		t.Fatalf("unexpected deliveries: in-app=%d email=%d", len(inApp.items), len(mail.sent))
	}
}

func TestNotifyJoinsChannelFailures(t *testing.T) {
	inAppErr := errors.New("insert failed")
	mailErr := errors.New("smtp down")
	d := newTestDispatcher(Channels{
		InApp: &memoryInApp{err: inAppErr},
		Contacts: &memoryContacts{contacts: map[string]model.Contact{
			"u1": {UserID: "u1", Email: "u1@example.com"},
		}},
		Email: &recordingEmail{err: mailErr},
	})

	err := d.NotifyAppealReply(context.Background(), AppealEvent{AppealID: "a1", RecipientID: "u1", Message: "hello"})
	if !errors.Is(err, apperr.ErrDependencyFailure) {
		t.Fatalf("expected dependency failure, got %v", err)
	}
	if !errors.Is(err, inAppErr) || !errors.Is(err, mailErr) {
		t.Fatalf("expected both channel errors to be joined, got %v", err)
	}
}

func TestNotifyModeratorsNewAppeal(t *testing.T) {
	inApp := &memoryInApp{}
	chat := &recordingChat{}
	d := newTestDispatcher(Channels{
		InApp: inApp,
		Contacts: &memoryContacts{moderators: []model.Contact{
			{UserID: "m1"},
			{UserID: "m2"},
		}},
		Telegram:        chat,
		ModeratorChatID: -100,
		PublicBaseURL:   "https://3arida.example",
	})

	err := d.NotifyModeratorsNewAppeal(context.Background(), AppealEvent{
		AppealID:      "a1",
		PetitionID:    "p1",
		PetitionTitle: "Clean the river",
		ActorName:     "Amina",
		Message:       "Please review again",
	})
	if err != nil {
		t.Fatalf("notify moderators: %v", err)
	}
	if len(chat.sent) != 1 || chat.sent[0].chatID != -100 || chat.sent[0].url != "https://3arida.example/mod/appeals/a1" {
		t.Fatalf("unexpected moderator chat message: %+v", chat.sent)
	}
	if len(inApp.items) != 2 || inApp.items[1].UserID != "m2" || inApp.items[1].Kind != enums.NotificationKindAppealCreated {
		t.Fatalf("unexpected moderator inbox records: %+v", inApp.items)
	}
}

func TestClosedDispatcherRejectsNotifications(t *testing.T) {
	d := newTestDispatcher(Channels{InApp: &memoryInApp{}})
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	err := d.NotifyPetitionStatusChange(context.Background(), PetitionStatusChange{CreatorID: "u1"})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	out, err := renderHTML("<b>x</b>", "line one\nline <two>", "https://3arida.example/p?a=1&b=2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<b>x</b>") || strings.Contains(out, "<two>") {
		t.Fatalf("expected escaped content, got %s", out)
	}
	if !strings.Contains(out, "line one<br>line &lt;two&gt;") {
		t.Fatalf("expected line breaks, got %s", out)
	}
	if !strings.Contains(out, "a=1&amp;b=2") {
		t.Fatalf("expected escaped link, got %s", out)
	}
}

func TestRenderHTMLKeepsComparisonsAsText(t *testing.T) {
	out, err := renderHTML("Amina", "Moderator notes: they said x<y and y>z on the form", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "they said x&lt;y and y&gt;z on the form") {
		t.Fatalf("expected the comparison to survive escaped, got %s", out)
	}
	if strings.Contains(out, "<a ") {
		t.Fatalf("no link expected, got %s", out)
	}
}

func TestRenderHTMLDropsUnsafeLinks(t *testing.T) {
	out, err := renderHTML("Amina", "hi", "javascript:alert(1)")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(strings.ToLower(out), "href=\"javascript") {
		t.Fatalf("unsafe href kept: %s", out)
	}
}
