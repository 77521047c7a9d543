package user

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hitoshi/blogapi/internal/model"
	"gopkg.in/yaml.v3"
)

// seedFile はユーザー初期投入ファイルの形式。
//
//	users:
//	  - name: Admin
//	    email: admin@example.com
//	    password: change-me
//	    role: ADMIN
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedResult は初期投入の結果。
type SeedResult struct {
	Created int
	Skipped int
}

// SeedFromFile はYAMLファイルからユーザーを投入する。
// 最初のADMINを用意するために使用する。登録済みのメールアドレスはスキップする。
// ロール未指定の場合はUSERとなる。
func (s *Service) SeedFromFile(ctx context.Context, path string) (SeedResult, error) {
	var result SeedResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return result, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, su := range f.Users {
		role := model.RoleUser
		if su.Role != "" {
			r, ok := model.ParseRole(su.Role)
			if !ok {
				return result, fmt.Errorf("seed user #%d: %w", i+1, model.NewInvalidRoleError(su.Role))
			}
			role = r
		}
		if err := validateProfile(su.Name, su.Email); err != nil {
			return result, fmt.Errorf("seed user #%d: %w", i+1, err)
		}
		if err := validatePassword(su.Password, true); err != nil {
			return result, fmt.Errorf("seed user #%d: %w", i+1, err)
		}

		_, err := s.create(ctx, su.Name, su.Email, su.Password, role)
		if model.IsCategory(err, model.CategoryBusinessConflict) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seed user #%d: %w", i+1, err)
		}
		result.Created++
	}

	slog.Info("seed completed",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}
