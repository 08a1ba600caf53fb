package cafeteria

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

// JSONRepository はJSONデータファイルによる食堂一覧の保存先
type JSONRepository struct {
	path string
}

// NewJSONRepository は新しいJSONRepositoryを作成
func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{
		path: path,
	}
}

// Path はデータファイルのパスを返す
func (r *JSONRepository) Path() string {
	return r.path
}

// entryDTO はデータファイルの1要素
// 旧形式の identifier キーや数値のIDも受け付ける
type entryDTO struct {
	ID         flexString `json:"id,omitempty"`
	Identifier flexString `json:"identifier,omitempty"`
	Name       flexString `json:"name"`
}

// flexString は文字列・数値のどちらでも読めるJSON値
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(trimmed)
	return nil
}

// Load はデータファイルを読み込む
// ファイルがない・壊れている場合は空の一覧を返す。idとnameの揃わない要素は捨てる
func (r *JSONRepository) Load(ctx context.Context) ([]cafeteria.Cafeteria, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []cafeteria.Cafeteria{}, nil
		}
		return nil, fmt.Errorf("failed to read cafeteria file: %w", err)
	}

	var entries []entryDTO
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.WarnCF("cafeteria", "Ignoring invalid cafeteria file", map[string]interface{}{
			"path":  r.path,
			"error": err.Error(),
		})
		return []cafeteria.Cafeteria{}, nil
	}

	list := make([]cafeteria.Cafeteria, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(string(e.ID))
		if id == "" {
			id = strings.TrimSpace(string(e.Identifier))
		}
		name := strings.TrimSpace(string(e.Name))
		if id == "" || name == "" {
			continue
		}
		list = append(list, cafeteria.Cafeteria{ID: id, Name: name})
	}

	return list, nil
}

// Save は食堂一覧をインデント付きJSONで書き出す
func (r *JSONRepository) Save(ctx context.Context, list []cafeteria.Cafeteria) error {
	if list == nil {
		list = []cafeteria.Cafeteria{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cafeterias: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cafeteria directory: %w", err)
		}
	}

	if err := os.WriteFile(r.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write cafeteria file: %w", err)
	}

	return nil
}

// Loader は食堂一覧の読み込み元
type Loader interface {
	Load(ctx context.Context) ([]cafeteria.Cafeteria, error)
}

// LoadDirectory はデータファイルから Directory を作る
// ファイルに有効な要素がなければ組み込みの一覧を使う
func LoadDirectory(ctx context.Context, repo Loader, urlTemplate string) (*cafeteria.Directory, error) {
	list, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cafeteria.NewDirectory(list, urlTemplate), nil
}
