package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"dbmis/internal/app/ds"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
)

const (
	attachmentPrefix = "items/"
	presignTTL       = 15 * time.Minute
)

// ObjectStore is the part of the MinIO client used for attachments.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentsEnabled reports whether an object store is configured.
func (r *Repository) AttachmentsEnabled() bool {
	return r.store != nil
}

// AttachmentObjectName builds a fresh object name that keeps the uploaded file extension.
func AttachmentObjectName(filename string) string {
	return attachmentPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// SetItemAttachment uploads the file, points the item at it and drops the previous object.
func (r *Repository) SetItemAttachment(ctx context.Context, id int, up Upload) (*ds.DataItem, error) {
	if r.store == nil {
		return nil, ErrStorageDisabled
	}
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	objectName := AttachmentObjectName(up.Filename)
	_, err = r.store.PutObject(ctx, r.bucket, objectName, up.Body, up.Size, minio.PutObjectOptions{
		ContentType: up.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", objectName, err)
	}

	err = r.db.WithContext(ctx).Model(&ds.DataItem{}).Where("id = ?", id).Update("attachment", objectName).Error
	if err != nil {
		// строка не обновилась, загруженный объект никому не нужен
		if rmErr := r.removeObject(ctx, objectName); rmErr != nil {
			logrus.Warnf("error removing orphan object %s: %v", objectName, rmErr)
		}
		return nil, err
	}

	if item.Attachment != "" {
		if err := r.removeObject(ctx, item.Attachment); err != nil {
			logrus.Warnf("error removing old attachment %s: %v", item.Attachment, err)
		}
	}
	return r.GetItem(ctx, id)
}

// AttachmentURL returns a short-lived download link for the item's attachment.
func (r *Repository) AttachmentURL(ctx context.Context, id int) (string, error) {
	if r.store == nil {
		return "", ErrStorageDisabled
	}
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return "", err
	}
	if item.Attachment == "" {
		return "", ErrNoAttachment
	}
	params := url.Values{}
	params.Set("response-content-disposition", "attachment; filename=\""+filepath.Base(item.Attachment)+"\"")
	u, err := r.store.PresignedGetObject(ctx, r.bucket, item.Attachment, presignTTL, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (r *Repository) removeObject(ctx context.Context, objectName string) error {
	if r.store == nil {
		return nil
	}
	return r.store.RemoveObject(ctx, r.bucket, objectName, minio.RemoveObjectOptions{})
}
