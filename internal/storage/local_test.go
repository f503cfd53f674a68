package storage

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{
		BasePath:   t.TempDir(),
		BaseURL:    "/files",
		SigningKey: "test-signing-key",
	})
	require.NoError(t, err)
	return s
}

func TestLocalSaveGetRoundTrip(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	err := s.Save(ctx, "fazenda-norte/contratos/contract.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	require.NoError(t, err)

	reader, err := s.Get(ctx, "fazenda-norte/contratos/contract.pdf")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestLocalGetMissing(t *testing.T) {
	s := newTestLocalStorage(t)
	_, err := s.Get(context.Background(), "nope/missing.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalEnsureContainerIdempotent(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureContainer(ctx, "fazenda-norte/contratos"))
	require.NoError(t, s.EnsureContainer(ctx, "fazenda-norte/contratos"))
}

func TestLocalMove(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "old/place/file.pdf", strings.NewReader("content"), ""))
	require.NoError(t, s.Move(ctx, "old/place/file.pdf", "new/place/file.pdf"))

	// Destination readable, source gone.
	reader, err := s.Get(ctx, "new/place/file.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(reader)
	reader.Close()
	assert.Equal(t, "content", string(data))

	_, err = s.Get(ctx, "old/place/file.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalMoveMissingSource(t *testing.T) {
	s := newTestLocalStorage(t)
	err := s.Move(context.Background(), "ghost/file.pdf", "anywhere/file.pdf")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLocalDeleteIdempotent(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a/b/file.pdf", strings.NewReader("x"), ""))
	require.NoError(t, s.Delete(ctx, "a/b/file.pdf"))
	require.NoError(t, s.Delete(ctx, "a/b/file.pdf"))
}

func TestLocalExists(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "a/file.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "a/file.pdf", strings.NewReader("x"), ""))
	ok, err = s.Exists(ctx, "a/file.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalPathEscapeRejected(t *testing.T) {
	s := newTestLocalStorage(t)
	err := s.Save(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestLocalSignedURL(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a/b/file.pdf", strings.NewReader("x"), ""))

	signed, err := s.SignedURL(ctx, "a/b/file.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/files/a/b/file.pdf", u.Path)

	exp := u.Query().Get("exp")
	sig := u.Query().Get("sig")
	assert.True(t, s.Signer().Verify("a/b/file.pdf", exp, sig))

	// Tampering with the path invalidates the signature.
	assert.False(t, s.Signer().Verify("a/b/other.pdf", exp, sig))
}

func TestSignerExpiry(t *testing.T) {
	signer := NewURLSigner("key")

	exp, sig := signer.Sign("a/file.pdf", time.Hour)
	assert.True(t, signer.Verify("a/file.pdf", strconv.FormatInt(exp, 10), sig))

	// A past expiry fails even with a matching signature.
	pastExp := time.Now().Add(-time.Minute).Unix()
	pastSig := signer.signature("a/file.pdf", pastExp)
	assert.False(t, signer.Verify("a/file.pdf", strconv.FormatInt(pastExp, 10), pastSig))

	// Garbage expiry fails outright.
	assert.False(t, signer.Verify("a/file.pdf", "not-a-number", sig))
}
