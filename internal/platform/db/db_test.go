package db

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 3306,
		Username: "msm", Password: "secret", DBName: "msm_db",
	}
	got := dsn(c)

	if !strings.HasPrefix(got, "msm:secret@tcp(localhost:3306)/msm_db?") {
		t.Errorf("dsn = %q, unexpected address part", got)
	}
	// 値が変わらない更新でもマッチ行数を返さないと、
	// ミラー更新側が NOT_FOUND と誤判定する
	if !strings.Contains(got, "clientFoundRows=true") {
		t.Errorf("dsn = %q, want clientFoundRows=true", got)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("dsn = %q, want parseTime=true", got)
	}
}
