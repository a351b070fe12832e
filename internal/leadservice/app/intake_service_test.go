package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hearthline/leadline/internal/leadservice/adapters/smsprovider"
	"github.com/hearthline/leadline/internal/leadservice/domain"
	"github.com/hearthline/leadline/internal/leadservice/notify"
)

func testIntakeConfig() IntakeConfig {
	return IntakeConfig{
		Business: notify.BusinessInfo{
			Name:              "Acme Heating",
			Phone:             "+15555550100",
			ResponseTimeHours: 3,
		},
		ProviderPhone:         "+18885550000",
		OperatorPhone:         "+14015559999",
		DedupWindow:           24 * time.Hour,
		TranscriptionLookback: time.Hour,
		MaxRecordingSeconds:   120,
	}
}

func setupIntakeTest(t *testing.T) (*IntakeService, *MockLeadRepository, *MockNotificationLogRepository, *smsprovider.MockProvider) {
	leadRepo := new(MockLeadRepository)
	notifLog := new(MockNotificationLogRepository)
	provider := smsprovider.NewMockProvider(discardLogger(), "")
	svc := NewIntakeService(leadRepo, notifLog, provider, testIntakeConfig(), discardLogger())
	return svc, leadRepo, notifLog, provider
}

func TestIntakeService_HandleIncomingCall(t *testing.T) {
	svc, leadRepo, _, provider := setupIntakeTest(t)

	prompt := svc.HandleIncomingCall(context.Background(), "+14015551111")

	assert.Contains(t, prompt.Greeting, "Thank you for calling Acme Heating.")
	assert.Equal(t, 120, prompt.MaxRecordingSeconds)
	leadRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, provider.Sent(), "no alert before a voicemail exists")
}

func TestIntakeService_HandleVoicemailComplete(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lead) bool {
		return l.CustomerPhone == "+14015551111" &&
			l.HasVoicemail &&
			l.VoicemailURL.Valid && l.VoicemailURL.String == "https://api.example.com/rec/RE1" &&
			l.Status == domain.StatusNew
	})).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, "+14015551111", 24*time.Hour).Return(false, nil).Once()
	notifLog.On("Record", mock.Anything, "+14015551111").Return(nil).Once()

	reply, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "https://api.example.com/rec/RE1")
	require.NoError(t, err)

	assert.Equal(t, "Thank you. We'll call you back soon.", reply)
	require.Len(t, provider.Sent(), 1)
	alert := provider.Sent()[0]
	assert.Equal(t, "+18885550000", alert.From)
	assert.Equal(t, "+14015559999", alert.To)
	assert.True(t, strings.HasPrefix(alert.Body, "NEW VOICEMAIL"))
	assert.Contains(t, alert.Body, "Listen: https://api.example.com/rec/RE1")
	assert.NotContains(t, alert.Body, "Transcription:", "transcription not available yet")
	leadRepo.AssertExpectations(t)
	notifLog.AssertExpectations(t)
}

func TestIntakeService_HandleVoicemailComplete_CreateFails(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	leadRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "https://api.example.com/rec/RE1")
	assert.Error(t, err)
	assert.Empty(t, provider.Sent(), "no alert for a lead that was never stored")
	notifLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestIntakeService_AlertSuppressedByDedupWindow(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, "+14015551111", 24*time.Hour).Return(true, nil).Once()

	_, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "https://api.example.com/rec/RE2")
	require.NoError(t, err)

	assert.Empty(t, provider.Sent())
	notifLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestIntakeService_SendFailureIsSwallowed(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)
	provider.SetFail(true)

	leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()

	reply, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "https://api.example.com/rec/RE3")
	require.NoError(t, err, "inbound reply proceeds despite the failed alert")
	assert.NotEmpty(t, reply)
	notifLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestIntakeService_HandleTranscription(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	existing := domain.NewLead(domain.NewLeadParams{
		CustomerPhone: "+14015551111",
		HasVoicemail:  true,
	})
	transcription := "Hi, my furnace is making a clanking noise, please call me back."

	leadRepo.On("FindRecentVoicemailLead", mock.Anything, "+14015551111", time.Hour).Return(existing, nil).Once()
	leadRepo.On("SetTranscription", mock.Anything, existing.ID, transcription).Return(true, nil).Once()
	leadRepo.On("AppendNote", mock.Anything, existing.ID, "Voicemail transcription: "+transcription).Return(true, nil).Once()

	err := svc.HandleTranscription(context.Background(), "+14015551111", transcription, "RE1")
	require.NoError(t, err)

	require.Len(t, provider.Sent(), 1)
	body := provider.Sent()[0].Body
	assert.True(t, strings.HasPrefix(body, "VOICEMAIL TRANSCRIBED"))
	assert.Contains(t, body, "Transcription:\n"+transcription)
	notifLog.AssertNotCalled(t, "WasRecentlyNotified", mock.Anything, mock.Anything, mock.Anything)
	notifLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	leadRepo.AssertExpectations(t)
}

// A voicemail alert puts the customer's number in the notification log, but
// the transcribed re-alert for that same voicemail must still go out.
func TestIntakeService_ReAlertSurvivesEarlierVoicemailAlert(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	notifLog := newMemNotificationLog()
	provider := smsprovider.NewMockProvider(discardLogger(), "")
	svc := NewIntakeService(leadRepo, notifLog, provider, testIntakeConfig(), discardLogger())

	var created *domain.Lead
	leadRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Lead)
	}).Return(nil).Once()

	_, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "https://api.example.com/rec/RE1")
	require.NoError(t, err)
	require.NotNil(t, created)

	transcription := "My furnace is making a clanking noise."
	leadRepo.On("FindRecentVoicemailLead", mock.Anything, "+14015551111", time.Hour).Return(created, nil).Once()
	leadRepo.On("SetTranscription", mock.Anything, created.ID, transcription).Return(true, nil).Once()
	leadRepo.On("AppendNote", mock.Anything, created.ID, mock.Anything).Return(true, nil).Once()

	err = svc.HandleTranscription(context.Background(), "+14015551111", transcription, "RE1")
	require.NoError(t, err)

	require.Len(t, provider.Sent(), 2)
	assert.True(t, strings.HasPrefix(provider.Sent()[0].Body, "NEW VOICEMAIL"))
	assert.True(t, strings.HasPrefix(provider.Sent()[1].Body, "VOICEMAIL TRANSCRIBED"))
	assert.Contains(t, provider.Sent()[1].Body, "Transcription:\n"+transcription)
	leadRepo.AssertExpectations(t)
}

func TestIntakeService_AutoTextWhenCallerLeftNoRecording(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lead) bool {
		return l.CustomerPhone == "+14015551111" && !l.VoicemailURL.Valid
	})).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, "+14015551111", 24*time.Hour).Return(false, nil).Once()
	notifLog.On("Record", mock.Anything, "+14015551111").Return(nil).Once()

	_, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "")
	require.NoError(t, err)

	require.Len(t, provider.Sent(), 2)
	alert, autoText := provider.Sent()[0], provider.Sent()[1]
	assert.Equal(t, "+14015559999", alert.To)
	assert.True(t, strings.HasPrefix(alert.Body, "NEW VOICEMAIL"))
	assert.Equal(t, "+14015551111", autoText.To, "auto-text goes back to the caller")
	assert.Contains(t, autoText.Body, "please reply with")
	assert.Contains(t, autoText.Body, "Your name")
	notifLog.AssertExpectations(t)
}

func TestIntakeService_AutoTextDedupedAcrossRepeatCalls(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	notifLog := newMemNotificationLog()
	provider := smsprovider.NewMockProvider(discardLogger(), "")
	svc := NewIntakeService(leadRepo, notifLog, provider, testIntakeConfig(), discardLogger())

	leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := svc.HandleVoicemailComplete(context.Background(), "+14015551111", "")
	require.NoError(t, err)
	_, err = svc.HandleVoicemailComplete(context.Background(), "+14015551111", "")
	require.NoError(t, err)

	assert.Len(t, provider.Sent(), 2, "second call adds no texts inside the window")
}

func TestIntakeService_HandleTranscription_NoMatchingLead(t *testing.T) {
	svc, leadRepo, _, provider := setupIntakeTest(t)

	leadRepo.On("FindRecentVoicemailLead", mock.Anything, "+14015551111", time.Hour).
		Return(nil, domain.ErrNotFound).Once()

	err := svc.HandleTranscription(context.Background(), "+14015551111", "orphaned text", "RE9")
	assert.NoError(t, err, "unmatched transcription is dropped, not an error")
	assert.Empty(t, provider.Sent())
	leadRepo.AssertNotCalled(t, "SetTranscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntakeService_HandleIncomingSMS(t *testing.T) {
	svc, leadRepo, notifLog, provider := setupIntakeTest(t)

	body := "John Smith\n123 Main St\nChimney cleaning"

	leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Lead) bool {
		return l.CustomerPhone == "+14015551111" &&
			l.Name.Valid && l.Name.String == "John Smith" &&
			l.Address.Valid && l.Address.String == "123 Main St" &&
			l.Service.Valid && l.Service.String == "Chimney cleaning" &&
			!l.HasVoicemail &&
			l.OriginalMessage.Valid && l.OriginalMessage.String == body
	})).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, "+14015551111", 24*time.Hour).Return(false, nil).Once()
	notifLog.On("Record", mock.Anything, "+14015551111").Return(nil).Once()

	ack, err := svc.HandleIncomingSMS(context.Background(), "+14015551111", body)
	require.NoError(t, err)

	assert.Contains(t, ack, "within 3 hours")
	assert.Contains(t, ack, "+15555550100")
	require.Len(t, provider.Sent(), 1)
	alert := provider.Sent()[0]
	assert.True(t, strings.HasPrefix(alert.Body, "NEW LEAD VIA SMS"))
	assert.Contains(t, alert.Body, "Name: John Smith")
	leadRepo.AssertExpectations(t)
	notifLog.AssertExpectations(t)
}

func TestIntakeService_NoOperatorPhoneSkipsAlert(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	notifLog := new(MockNotificationLogRepository)
	provider := smsprovider.NewMockProvider(discardLogger(), "")
	cfg := testIntakeConfig()
	cfg.OperatorPhone = ""
	svc := NewIntakeService(leadRepo, notifLog, provider, cfg, discardLogger())

	leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	notifLog.On("WasRecentlyNotified", mock.Anything, "+14015551111", 24*time.Hour).Return(false, nil).Once()

	_, err := svc.HandleIncomingSMS(context.Background(), "+14015551111", "hi")
	require.NoError(t, err)
	assert.Empty(t, provider.Sent())
	notifLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}
