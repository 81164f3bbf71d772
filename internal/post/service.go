// Package post は投稿の作成・一覧・更新・削除のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/newsboard/internal/model"
	"github.com/hitoshi/newsboard/internal/repository"
	"github.com/hitoshi/newsboard/internal/validate"
)

// 投稿操作の種別。メトリクスのラベルに使用する。
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// MetricsRecorder は投稿操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordPostOperation(op string)
}

// Service は投稿管理のサービス層。
// 更新・削除は投稿者本人（ユーザー名とメールアドレスが一致）のみ許可する。
type Service struct {
	postRepo repository.PostRepository
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnilでもよい。
func NewService(postRepo repository.PostRepository, metrics MetricsRecorder) *Service {
	return &Service{
		postRepo: postRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Create は認証済みユーザーの投稿を作成する。
func (s *Service) Create(ctx context.Context, identity model.Identity, news string) (*model.Post, error) {
	if err := validateNews(news); err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Post{
		ID:        uuid.New().String(),
		News:      news,
		Username:  identity.Username,
		Email:     identity.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	s.record(OpCreate)
	slog.Info("post created",
		slog.String("post_id", p.ID),
		slog.String("user_id", identity.UserID),
	)
	return p, nil
}

// List は全投稿を新しい順に返す。投稿がない場合は空スライスを返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	return posts, nil
}

// Update は投稿本文を上書きする。
// 存在確認（404）を所有者確認（403）より先に行う。
func (s *Service) Update(ctx context.Context, identity model.Identity, postID, news string) (*model.Post, error) {
	if err := validateNews(news); err != nil {
		return nil, err
	}

	if _, err := s.findOwned(ctx, identity, postID); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.UpdateNews(ctx, postID, news)
	if err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}
	// 確認後に削除された場合
	if updated == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	s.record(OpUpdate)
	slog.Info("post updated",
		slog.String("post_id", postID),
		slog.String("user_id", identity.UserID),
	)
	return updated, nil
}

// Delete は投稿を削除する。
func (s *Service) Delete(ctx context.Context, identity model.Identity, postID string) error {
	if _, err := s.findOwned(ctx, identity, postID); err != nil {
		return err
	}

	deleted, err := s.postRepo.Delete(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewPostNotFoundError(postID)
	}

	s.record(OpDelete)
	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", identity.UserID),
	)
	return nil
}

// findOwned は投稿を取得し、identityが投稿者であることを確認する。
// UUIDとして不正なIDは存在しない投稿として扱う。
func (s *Service) findOwned(ctx context.Context, identity model.Identity, postID string) (*model.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	p, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if !p.IsOwnedBy(identity) {
		slog.Warn("post ownership check failed",
			slog.String("post_id", postID),
			slog.String("user_id", identity.UserID),
		)
		return nil, model.NewForbiddenError()
	}
	return p, nil
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordPostOperation(op)
	}
}

func validateNews(news string) error {
	var v validate.Collector
	v.Required("news", news, "News is required")
	v.Text("news", news, "News contains invalid characters")
	return v.Err()
}
