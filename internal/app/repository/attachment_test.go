package repository

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"dbmis/internal/app/ds"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "attachments"

// memStore keeps objects in a map and records removals.
type memStore struct {
	objects map[string][]byte
	removed []string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.objects[object] = body
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(body))}, nil
}

func (m *memStore) RemoveObject(_ context.Context, _, object string, _ minio.RemoveObjectOptions) error {
	delete(m.objects, object)
	m.removed = append(m.removed, object)
	return nil
}

func (m *memStore) PresignedGetObject(_ context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error) {
	u := &url.URL{Scheme: "http", Host: "minio.local", Path: "/" + bucket + "/" + object}
	q := url.Values{}
	q.Set("X-Amz-Expires", expires.String())
	q.Set("response-content-disposition", params.Get("response-content-disposition"))
	u.RawQuery = q.Encode()
	return u, nil
}

func newAttachmentRepository(t *testing.T) (*Repository, *memStore, *ds.DataItem) {
	t.Helper()
	rep, _ := newTestRepository(t)
	store := newMemStore()
	WithObjectStore(store, testBucket)(rep)

	sales, _ := seedItems(t, rep)
	item, err := rep.CreateItem(context.Background(), &ds.DataItem{Name: "contract", CategoryID: sales.ID})
	require.NoError(t, err)
	return rep, store, item
}

func upload(name, body string) Upload {
	return Upload{Filename: name, ContentType: "application/pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestSetItemAttachment_ReplacesPreviousObject(t *testing.T) {
	rep, store, item := newAttachmentRepository(t)
	ctx := context.Background()
	require.True(t, rep.AttachmentsEnabled())

	first, err := rep.SetItemAttachment(ctx, item.ID, upload("Scan.PDF", "v1"))
	require.NoError(t, err)
	assert.Regexp(t, `^items/[0-9a-f-]{36}\.pdf$`, first.Attachment)
	assert.Equal(t, []byte("v1"), store.objects[first.Attachment])
	assert.Empty(t, store.removed)

	second, err := rep.SetItemAttachment(ctx, item.ID, upload("scan.pdf", "v2"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Attachment, second.Attachment)
	assert.Equal(t, []string{first.Attachment}, store.removed)
	assert.Len(t, store.objects, 1)
	assert.Equal(t, []byte("v2"), store.objects[second.Attachment])

	stored, err := rep.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Attachment, stored.Attachment)
}

func TestSetItemAttachment_Failures(t *testing.T) {
	rep, store, item := newAttachmentRepository(t)
	ctx := context.Background()

	_, err := rep.SetItemAttachment(ctx, 9999, upload("a.pdf", "x"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.objects)

	store.putErr = errors.New("bucket unavailable")
	_, err = rep.SetItemAttachment(ctx, item.ID, upload("a.pdf", "x"))
	require.Error(t, err)

	stored, err := rep.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Attachment)
}

func TestAttachmentURL(t *testing.T) {
	rep, _, item := newAttachmentRepository(t)
	ctx := context.Background()

	_, err := rep.AttachmentURL(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNoAttachment)
	_, err = rep.AttachmentURL(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := rep.SetItemAttachment(ctx, item.ID, upload("report.pdf", "pdf"))
	require.NoError(t, err)

	raw, err := rep.AttachmentURL(ctx, item.ID)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/"+testBucket+"/"+updated.Attachment, u.Path)
	assert.Equal(t, presignTTL.String(), u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("response-content-disposition"), "attachment;")
}

func TestDeleteItem_RemovesAttachment(t *testing.T) {
	rep, store, item := newAttachmentRepository(t)
	ctx := context.Background()

	updated, err := rep.SetItemAttachment(ctx, item.ID, upload("a.pdf", "x"))
	require.NoError(t, err)

	require.NoError(t, rep.DeleteItem(ctx, item.ID))
	assert.Equal(t, []string{updated.Attachment}, store.removed)
	assert.Empty(t, store.objects)
}
