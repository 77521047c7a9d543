package policy

import (
	"log/slog"

	"github.com/hitoshi/blogapi/internal/model"
)

// Recorder は認可判定の結果を記録するインターフェース。
// metrics.Metricsが実装する。
type Recorder interface {
	RecordAuthorization(resource, action, decision string)
}

// Enforcer は判定結果をエラーに変換し、Recorderへ記録する。
// 判定自体はEvaluate / EvaluateAdminに委譲する。
type Enforcer struct {
	recorder Recorder
}

// NewEnforcer はEnforcerを生成する。recorderはnilでもよい。
func NewEnforcer(recorder Recorder) *Enforcer {
	return &Enforcer{recorder: recorder}
}

// Authorize はtierに従って判定し、拒否の場合はForbiddenエラーを返す。
// リソースの存在確認は呼び出し側で先に済ませておくこと。
func (e *Enforcer) Authorize(caller *model.User, ownerID, resource, action string, tier Tier) error {
	d := Evaluate(caller, ownerID, tier)
	return e.finish(caller, d, resource, action, tier.String())
}

// RequireAdmin はADMINのみに許可される操作を判定する。
func (e *Enforcer) RequireAdmin(caller *model.User, resource, action string) error {
	d := EvaluateAdmin(caller)
	return e.finish(caller, d, resource, action, "admin")
}

func (e *Enforcer) finish(caller *model.User, d Decision, resource, action, tier string) error {
	if e != nil && e.recorder != nil {
		e.recorder.RecordAuthorization(resource, action, d.String())
	}
	if d == Allow {
		return nil
	}

	callerID := ""
	if caller != nil {
		callerID = caller.ID
	}
	slog.Warn("authorization denied",
		slog.String("caller_id", callerID),
		slog.String("resource", resource),
		slog.String("action", action),
		slog.String("tier", tier),
	)
	return model.NewForbiddenError(resource, action)
}
