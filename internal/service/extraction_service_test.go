package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
	"firescribe/internal/extract"
	"firescribe/internal/fieldset"
	"firescribe/internal/metrics"
	"firescribe/internal/port"
	"firescribe/internal/service"
	"firescribe/mocks"
)

type extractionMocks struct {
	generator   *mocks.MockGenerator
	transcriber *mocks.MockTranscriber
	cache       *mocks.MockTranscriptCache
	appender    *mocks.MockIncidentAppender
	repo        *mocks.MockIncidentRepo
	storage     *mocks.MockObjectStorage
	events      *mocks.MockEventPublisher
}

func setupExtractionService(t *testing.T) (service.ExtractionService, *extractionMocks) {
	t.Helper()

	m := &extractionMocks{
		generator:   new(mocks.MockGenerator),
		transcriber: new(mocks.MockTranscriber),
		cache:       new(mocks.MockTranscriptCache),
		appender:    new(mocks.MockIncidentAppender),
		repo:        new(mocks.MockIncidentRepo),
		storage:     new(mocks.MockObjectStorage),
		events:      new(mocks.MockEventPublisher),
	}

	profiles, err := fieldset.NewRegistry("")
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	svc := service.NewExtractionService(
		extract.New(m.generator, true),
		m.transcriber,
		m.cache,
		m.appender,
		m.repo,
		m.storage,
		m.events,
		profiles,
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		service.ExtractionConfig{
			AudioBucket:         "firescribe-audio",
			MaxAudioBytes:       1 << 20,
			MissingFieldPenalty: 0.1,
		},
	)
	return svc, m
}

func generatorReply(text string) *port.GenerateOutput {
	return &port.GenerateOutput{Text: text, Provider: "openai", Model: "gpt-4o-mini"}
}

func expectStoreSuccess(m *extractionMocks) {
	m.appender.On("Append", mock.Anything, mock.AnythingOfType("*domain.Incident")).Return(nil)
	m.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Incident")).Return(nil)
	m.events.On("PublishIncidentExtracted", mock.Anything, mock.AnythingOfType("*domain.Incident")).Return(nil)
}

// --- ExtractFromText ---

func TestExtractionService_ExtractFromText_Success(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.MatchedBy(func(input port.GenerateInput) bool {
		return input.JSONMode && strings.Contains(input.User, "engine fire on I-80")
	})).Return(generatorReply(`{"city":{"value":"Oakland","confidence":0.9},"units":{"value":"","confidence":0}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Vehicle engine fire on I-80 westbound near the toll plaza in Oakland.",
		Fields:    []string{"city", "units"},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, domain.SourceText, result.Source)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, []string{"city", "units"}, result.FieldNames())
	assert.Equal(t, "Oakland", result.Value("city"))
	assert.Empty(t, result.AudioKey)
	assert.NotZero(t, result.ID)
	assert.False(t, result.CapturedAt.IsZero())
	// One of two fields missing at penalty 0.1.
	assert.InDelta(t, 0.9, result.Completeness, 1e-9)

	m.appender.AssertExpectations(t)
	m.repo.AssertExpectations(t)
}

func TestExtractionService_ExtractFromText_EmptyNarrative(t *testing.T) {
	svc, m := setupExtractionService(t)

	for _, narrative := range []string{"", "   ", "\n\t"} {
		result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
			Narrative: narrative,
			Fields:    []string{"city"},
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrEmptyNarrative)
	}
	m.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_DefaultProfile(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.MatchedBy(func(input port.GenerateInput) bool {
		return strings.Contains(input.User, "incident_neris_id")
	})).Return(generatorReply(`{"incident_neris_id":{"value":"FD202503140042","confidence":0.8}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Incident FD202503140042, kitchen fire, single family dwelling.",
	})

	assert.NoError(t, err)
	assert.Len(t, result.Fields, len(fieldset.NERISFields))
	assert.Equal(t, "FD202503140042", result.Value("incident_neris_id"))
}

func TestExtractionService_ExtractFromText_UnknownProfile(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Dumpster fire behind the strip mall.",
		Profile:   "nfirs",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnknownProfile)
	m.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_DuplicateField(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Brush fire along the levee.",
		Fields:    []string{"city", "city"},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrDuplicateField)
	m.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_BackendUnavailable(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, domain.ErrBackendUnavailable)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Structure fire, two story residential.",
		Fields:    []string{"city"},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	m.appender.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_UnrecoverableOutput(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply("I cannot extract fields from this narrative."), nil)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Odor investigation at the high school.",
		Fields:    []string{"city"},
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnrecoverableOutput)
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_FencedOutputRecovered(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply("```json\n{\"city\":{\"value\":\"Fresno\",\"confidence\":0.7}}\n```"), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Grass fire off Highway 99 near Fresno.",
		Fields:    []string{"city"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Fresno", result.Value("city"))
}

func TestExtractionService_ExtractFromText_AppendFailure(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"Reno","confidence":0.9}}`), nil)
	m.appender.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Apartment fire downtown.",
		Fields:    []string{"city"},
	})

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "appending incident to csv store")
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromText_RepoFailure(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"Reno","confidence":0.9}}`), nil)
	m.appender.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db connection error"))

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Apartment fire downtown.",
		Fields:    []string{"city"},
	})

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "storing incident")
}

func TestExtractionService_ExtractFromText_PublishFailureIsNotFatal(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"Reno","confidence":0.9}}`), nil)
	m.appender.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.events.On("PublishIncidentExtracted", mock.Anything, mock.Anything).
		Return(errors.New("nats: connection closed"))

	result, err := svc.ExtractFromText(context.Background(), &service.ExtractTextInput{
		Narrative: "Apartment fire downtown.",
		Fields:    []string{"city"},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

// --- ExtractFromAudio ---

func audioInput(audio []byte) *service.ExtractAudioInput {
	return &service.ExtractAudioInput{
		Audio:       audio,
		ContentType: "audio/wav",
		FileName:    "dispatch.wav",
		Fields:      []string{"city"},
	}
}

func TestExtractionService_ExtractFromAudio_Success(t *testing.T) {
	svc, m := setupExtractionService(t)

	audio := []byte("RIFF fake wav bytes")
	digest := sha256.Sum256(audio)
	cacheKey := hex.EncodeToString(digest[:])

	m.cache.On("Get", mock.Anything, cacheKey).Return("", false, nil)
	m.transcriber.On("Transcribe", mock.Anything, mock.MatchedBy(func(input port.TranscribeInput) bool {
		return input.ContentType == "audio/wav" && input.FileName == "dispatch.wav"
	})).Return(&port.TranscribeOutput{Text: "Working fire at Fourth and Main in Stockton."}, nil)
	m.cache.On("Set", mock.Anything, cacheKey, "Working fire at Fourth and Main in Stockton.").Return(nil)
	m.storage.On("Upload", mock.Anything, mock.MatchedBy(func(input port.UploadInput) bool {
		return input.Bucket == "firescribe-audio" &&
			strings.HasPrefix(input.Key, "audio/") &&
			strings.HasSuffix(input.Key, ".wav")
	})).Return(&port.UploadOutput{Location: "s3://firescribe-audio/audio/x.wav"}, nil)
	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"Stockton","confidence":0.85}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput(audio))

	assert.NoError(t, err)
	assert.Equal(t, domain.SourceAudio, result.Source)
	assert.Equal(t, "Working fire at Fourth and Main in Stockton.", result.Narrative)
	assert.Equal(t, "Stockton", result.Value("city"))
	assert.Equal(t, "audio/"+result.ID.String()+".wav", result.AudioKey)

	m.transcriber.AssertExpectations(t)
	m.storage.AssertExpectations(t)
}

func TestExtractionService_ExtractFromAudio_CacheHitSkipsTranscriber(t *testing.T) {
	svc, m := setupExtractionService(t)

	audio := []byte("RIFF cached upload")
	digest := sha256.Sum256(audio)
	cacheKey := hex.EncodeToString(digest[:])

	m.cache.On("Get", mock.Anything, cacheKey).
		Return("Vegetation fire along the canal bank.", true, nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{}, nil)
	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"","confidence":0}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput(audio))

	assert.NoError(t, err)
	assert.Equal(t, "Vegetation fire along the canal bank.", result.Narrative)
	m.transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
	m.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromAudio_EmptyAudio(t *testing.T) {
	svc, _ := setupExtractionService(t)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput(nil))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyAudio)
}

func TestExtractionService_ExtractFromAudio_UnsupportedContentType(t *testing.T) {
	svc, _ := setupExtractionService(t)

	input := audioInput([]byte("not audio"))
	input.ContentType = "application/pdf"

	result, err := svc.ExtractFromAudio(context.Background(), input)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)
	assert.Contains(t, err.Error(), "application/pdf")
}

func TestExtractionService_ExtractFromAudio_TooLarge(t *testing.T) {
	svc, m := setupExtractionService(t)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput(make([]byte, (1<<20)+1)))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrAudioTooLarge)
	m.transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromAudio_TranscriberFailure(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	m.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(nil, domain.ErrTranscriptionFailed)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput([]byte("RIFF noisy")))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrTranscriptionFailed)
	m.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractFromAudio_EmptyTranscript(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	m.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(&port.TranscribeOutput{Text: "   "}, nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput([]byte("RIFF silence")))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyNarrative)
}

func TestExtractionService_ExtractFromAudio_UploadFailureIsNotFatal(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	m.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(&port.TranscribeOutput{Text: "Trash fire behind the depot."}, nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("s3 connection refused"))
	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"","confidence":0}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput([]byte("RIFF depot")))

	assert.NoError(t, err)
	assert.Empty(t, result.AudioKey)
}

func TestExtractionService_ExtractFromAudio_CacheErrorDegradesToMiss(t *testing.T) {
	svc, m := setupExtractionService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).
		Return("", false, errors.New("redis: connection refused"))
	m.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(&port.TranscribeOutput{Text: "Mutual aid request for the ridge fire."}, nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{}, nil)
	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"","confidence":0}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput([]byte("RIFF ridge")))

	assert.NoError(t, err)
	assert.Equal(t, "Mutual aid request for the ridge fire.", result.Narrative)
	m.transcriber.AssertExpectations(t)
}

func TestExtractionService_ExtractFromAudio_NilStorageSkipsArchival(t *testing.T) {
	m := &extractionMocks{
		generator:   new(mocks.MockGenerator),
		transcriber: new(mocks.MockTranscriber),
		cache:       new(mocks.MockTranscriptCache),
		appender:    new(mocks.MockIncidentAppender),
		repo:        new(mocks.MockIncidentRepo),
		events:      new(mocks.MockEventPublisher),
	}
	profiles, err := fieldset.NewRegistry("")
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	svc := service.NewExtractionService(
		extract.New(m.generator, true),
		m.transcriber, m.cache, m.appender, m.repo,
		nil,
		m.events, profiles,
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		service.ExtractionConfig{MaxAudioBytes: 1 << 20, MissingFieldPenalty: 0.1},
	)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	m.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return(&port.TranscribeOutput{Text: "Bin fire at the recycling yard."}, nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.generator.On("Generate", mock.Anything, mock.Anything).
		Return(generatorReply(`{"city":{"value":"","confidence":0}}`), nil)
	expectStoreSuccess(m)

	result, err := svc.ExtractFromAudio(context.Background(), audioInput([]byte("RIFF yard")))

	assert.NoError(t, err)
	assert.Empty(t, result.AudioKey)
}
