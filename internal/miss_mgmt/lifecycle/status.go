package lifecycle

// Status は回収漏れ報告のステータス（スプレッドシートの Collection Status 列と同値）
type Status string

const (
	StatusPending            Status = "Pending"
	StatusPremature          Status = "Premature"
	StatusDispatched         Status = "Dispatched"
	StatusPickedUp           Status = "Picked Up"
	StatusNotOut             Status = "Not Out"
	StatusRejected           Status = "Rejected"
	StatusDelayed            Status = "Delayed"
	StatusConfirmedPremature Status = "Confirmed Premature"
	StatusOneTimeException   Status = "One Time Exception"
)

// GateStatus は当日のサービス便が完了済みかどうか
type GateStatus string

const (
	GateComplete    GateStatus = "Complete"
	GateNotComplete GateStatus = "Not Complete"
)

// 履歴集計で「正規の回収漏れ」として数えるステータス
var legitMissStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusDispatched: {},
	StatusNotOut:     {},
	StatusPickedUp:   {},
}

// 重複ガードで「未解決」とみなすステータス（未ディスパッチであることが前提）
var activeForDuplicate = map[Status]struct{}{
	StatusPending:   {},
	StatusPremature: {},
}

// 完了時に指定できる結果ステータス
var completionOutcomes = map[Status]struct{}{
	StatusPickedUp:           {},
	StatusNotOut:             {},
	StatusRejected:           {},
	StatusDelayed:            {},
	StatusConfirmedPremature: {},
	StatusOneTimeException:   {},
}

// 完了しても回収漏れ回数を加算しない結果
var nonCountingOutcomes = map[Status]struct{}{
	StatusPremature:          {},
	StatusConfirmedPremature: {},
	StatusRejected:           {},
	StatusOneTimeException:   {},
}

func IsLegitMiss(s Status) bool {
	_, ok := legitMissStatuses[s]
	return ok
}

func IsActiveForDuplicate(s Status) bool {
	_, ok := activeForDuplicate[s]
	return ok
}

func IsCompletionOutcome(s Status) bool {
	_, ok := completionOutcomes[s]
	return ok
}

func CountsAsMiss(outcome Status) bool {
	_, ok := nonCountingOutcomes[outcome]
	return !ok
}

// SubmitStatus: 新規報告の初期ステータス。
// 当日の該当サービス便が未完了（ゲート未達）なら Premature。
func SubmitStatus(gate GateStatus, gateExists bool) Status {
	if gateExists && gate == GateNotComplete {
		return StatusPremature
	}
	return StatusPending
}

// DispatchStatus: ディスパッチ後のステータス。
// Premature はディスパッチしてもフラグを維持する。
func DispatchStatus(current Status) Status {
	if current == StatusPremature {
		return StatusPremature
	}
	return StatusDispatched
}

// CanComplete: 完了操作を受け付けられる状態か。
// ディスパッチ時刻が入っていることが前提条件。
func CanComplete(current Status, dispatched bool) bool {
	if !dispatched {
		return false
	}
	switch current {
	case StatusDispatched, StatusDelayed, StatusPremature:
		return true
	}
	return false
}

// ParseStatus は外部入力のステータス文字列を検証する
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPremature, StatusDispatched, StatusPickedUp,
		StatusNotOut, StatusRejected, StatusDelayed,
		StatusConfirmedPremature, StatusOneTimeException:
		return Status(s), true
	}
	return "", false
}
