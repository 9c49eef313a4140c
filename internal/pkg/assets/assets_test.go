package assets

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LeadFox/app/repository"
	"github.com/ManuelReschke/LeadFox/internal/pkg/apperror"
	"github.com/ManuelReschke/LeadFox/internal/pkg/database"
	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects[key] = body
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

var admin = usercontext.UserContext{UserID: "admin-1", Role: "admin", IsLoggedIn: true, IsAdmin: true}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 200, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func TestPrepareImageShrinksWideImages(t *testing.T) {
	img, err := PrepareImage(bytes.NewReader(pngOf(t, 400, 100)), "hero.PNG", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Ext)

	decoded, err := imaging.Decode(bytes.NewReader(img.Body))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
}

func TestPrepareImageKeepsNarrowImages(t *testing.T) {
	img, err := PrepareImage(bytes.NewReader(pngOf(t, 120, 80)), "logo.jpg", 200)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, "image/jpeg", img.ContentType)
}

func TestPrepareImageRejectsUnknownTypes(t *testing.T) {
	_, err := PrepareImage(bytes.NewReader(pngOf(t, 10, 10)), "notes.txt", 200)
	assert.Error(t, err)

	_, err = PrepareImage(bytes.NewReader([]byte("not an image")), "fake.png", 200)
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.png",
		PublicURL(env.AssetsConfig{PublicBaseURL: "https://cdn.example.com/"}, "a.png"))
	assert.Equal(t, "https://s3.example.com/media/a.png",
		PublicURL(env.AssetsConfig{EndpointURL: "https://s3.example.com", BucketName: "media"}, "a.png"))
	assert.Equal(t, "https://media.s3.eu-central-1.amazonaws.com/a.png",
		PublicURL(env.AssetsConfig{BucketName: "media", Region: "eu-central-1"}, "a.png"))
}

func TestMediaServiceUpload(t *testing.T) {
	repos := repository.NewRepositories(database.NewTestDB(t))
	store := newMemoryStore()
	svc := NewMediaService(repos.SiteMedia, store, 100)
	ctx := context.Background()

	m, err := svc.Upload(ctx, admin, "home.hero", "hero.png", bytes.NewReader(pngOf(t, 300, 30)))
	require.NoError(t, err)
	assert.Equal(t, "home.hero", m.Key)
	assert.Contains(t, m.URL, "https://cdn.example.com/site-media/")
	require.Len(t, store.objects, 1)

	for key, body := range store.objects {
		assert.Equal(t, "image/png", store.types[key])
		decoded, err := imaging.Decode(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, 100, decoded.Bounds().Dx())
	}

	all, err := svc.Public(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, m.URL, all[0].URL)
}

func TestMediaServiceUploadErrors(t *testing.T) {
	repos := repository.NewRepositories(database.NewTestDB(t))
	ctx := context.Background()

	disabled := NewMediaService(repos.SiteMedia, nil, 100)
	assert.False(t, disabled.UploadsEnabled())
	_, err := disabled.Upload(ctx, admin, "home.hero", "hero.png", bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	store := newMemoryStore()
	svc := NewMediaService(repos.SiteMedia, store, 100)
	_, err = svc.Upload(ctx, admin, " ", "hero.png", bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	store.err = errors.New("bucket gone")
	_, err = svc.Upload(ctx, admin, "home.hero", "hero.png", bytes.NewReader(pngOf(t, 10, 10)))
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestMediaServiceRoleGates(t *testing.T) {
	repos := repository.NewRepositories(database.NewTestDB(t))
	svc := NewMediaService(repos.SiteMedia, newMemoryStore(), 100)
	ctx := context.Background()

	_, err := svc.List(ctx, usercontext.Anonymous)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	partner := usercontext.UserContext{UserID: "p-1", Role: "partner", IsLoggedIn: true}
	_, err = svc.Upsert(ctx, partner, "home.hero", "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Upsert(ctx, admin, "home.hero", "not a url")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	m, err := svc.Upsert(ctx, admin, "home.hero", "https://cdn.example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", m.URL)
}
