package lifecycle

// 集計結果の番兵値
const (
	LastMissedFirstTime = "First Time" // 新規提出でまだ過去の漏れがない
	LastMissedNever     = "Never"      // 完了時点で正規の漏れが一度もない
)

// HistoryEntry はマスターログ1行のうち履歴集計に必要な部分
type HistoryEntry struct {
	Address        string
	Date           string
	TimeCalledIn   string
	Status         Status
	TimeDispatched string // 未ディスパッチなら空
}

// PriorMisses は同一住所の正規漏れ（legit miss）のうち、
// cutoff より厳密に前のものを数え、最新の発生日を返す。
// 対象が無ければ lastDate は空文字。
func PriorMisses(history []HistoryEntry, address string, cutoff HistoryPoint) (count int, lastDate string) {
	var last HistoryPoint
	for _, h := range history {
		if h.Address != address {
			continue
		}
		if !IsLegitMiss(h.Status) {
			continue
		}
		p := PointOf(h.Date, h.TimeCalledIn)
		if !p.Before(cutoff) {
			continue
		}
		count++
		if lastDate == "" || last.Before(p) {
			last = p
			lastDate = h.Date
		}
	}
	return count, lastDate
}

// 無制限集計用の遠い未来（提出時は既存行すべてが「過去」）
var farFuture = HistoryPoint{Date: "9999-12-31", CalledInMins: 1 << 30}

// SubmitTally: 新規提出時の Times Missed / Last Missed。
// 既存の正規漏れ全件 + 今回の提出1回分。
func SubmitTally(history []HistoryEntry, address string) (timesMissed int, lastMissed string) {
	count, lastDate := PriorMisses(history, address, farFuture)
	if lastDate == "" {
		lastDate = LastMissedFirstTime
	}
	return count + 1, lastDate
}

// CompletionTally: 完了時の再集計。
// Rejected / Confirmed Premature / One Time Exception 等の非正規結果は
// 今回分を加算せず、Last Missed は過去の正規漏れの日付（無ければ "Never"）。
// 正規結果（Picked Up / Not Out / Delayed）は加算し、Last Missed は
// cutoff より前の最新の正規漏れの日付。過去分が無いときのみ自身の日付。
func CompletionTally(history []HistoryEntry, address string, cutoff HistoryPoint, outcome Status, ownDate string) (timesMissed int, lastMissed string) {
	count, lastDate := PriorMisses(history, address, cutoff)
	if !CountsAsMiss(outcome) {
		if lastDate == "" {
			lastDate = LastMissedNever
		}
		return count, lastDate
	}
	if lastDate == "" {
		lastDate = ownDate
	}
	return count + 1, lastDate
}

// HasActiveDuplicate: 同一住所で未解決（Pending/Premature かつ未ディスパッチ）の
// 行が既にあるか。二重提出ガード。
func HasActiveDuplicate(history []HistoryEntry, address string) bool {
	for _, h := range history {
		if h.Address != address {
			continue
		}
		if !IsActiveForDuplicate(h.Status) {
			continue
		}
		if h.TimeDispatched != "" {
			continue
		}
		return true
	}
	return false
}
