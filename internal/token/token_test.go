package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogapi/internal/model"
)

var testSecret = []byte("test-secret-key-must-be-32-bytes!!")

// fakeClock はテストから時刻を進められる時計。
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, ttl time.Duration, clock *fakeClock) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: testSecret, TTL: ttl, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestIssueVerify_RoundTrip_ReturnsSubject(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, time.Hour, clock)

	tok, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if subject != "alice@example.com" {
		t.Errorf("subject = %q, want %q", subject, "alice@example.com")
	}
}

func TestIssue_EmbedsIssuedAtAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 500, time.UTC)}
	svc := newTestService(t, 30*time.Minute, clock)

	tok, err := svc.Issue("bob@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// 署名検証なしでクレームを読み出す
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}

	wantIat := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if !claims.IssuedAt.Time.Equal(wantIat) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, wantIat)
	}
	if !claims.ExpiresAt.Time.Equal(wantIat.Add(30 * time.Minute)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, wantIat.Add(30*time.Minute))
	}
	if claims.Subject != "bob@example.com" {
		t.Errorf("sub = %q, want %q", claims.Subject, "bob@example.com")
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr bool
	}{
		{name: "発行直後は有効", elapsed: 0, wantErr: false},
		{name: "期限の1秒前は有効", elapsed: time.Hour - time.Second, wantErr: false},
		{name: "期限ちょうどで無効", elapsed: time.Hour, wantErr: true},
		{name: "期限超過後は無効", elapsed: time.Hour + time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			svc := newTestService(t, time.Hour, clock)

			tok, err := svc.Issue("alice@example.com")
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			clock.now = issuedAt.Add(tt.elapsed)
			_, err = svc.Verify(tok)
			if tt.wantErr {
				if !model.IsCategory(err, model.CategoryInvalidToken) {
					t.Errorf("Verify() error = %v, want invalid_token", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Verify() error = %v, want nil", err)
			}
		})
	}
}

// TTL=0で発行したトークンは即座に検証失敗となること
// 秒未満の発行時刻は切り捨てられ、失効はiat+TTLの秒境界で起きる。
func TestVerify_ExpiryHasSecondGranularity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 900_000_000, time.UTC)}
	svc := newTestService(t, time.Hour, clock)

	tok, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clock.now = time.Date(2026, 1, 1, 12, 59, 59, 400_000_000, time.UTC)
	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("Verify() before truncated expiry error = %v", err)
	}

	// 発行時刻+TTL（13:00:00.9）より前だが、exp（13:00:00）に達している
	clock.now = time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)
	if _, err := svc.Verify(tok); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() at exp error = %v, want invalid token", err)
	}
}

func TestVerify_ZeroTTL_FailsImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, 0, clock)

	tok, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := svc.Verify(tok); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() error = %v, want invalid_token", err)
	}
}

func TestVerify_TamperedSignature_ReturnsInvalidToken(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, time.Hour, clock)

	tok, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token parts = %d, want 3", len(parts))
	}
	// 署名部の先頭文字を書き換える
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Verify(tampered); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() error = %v, want invalid_token", err)
	}
}

func TestVerify_DifferentSecret_ReturnsInvalidToken(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestService(t, time.Hour, clock)

	other, err := NewService(Config{Secret: []byte("another-secret-key-of-32-bytes!!!"), TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	tok, err := issuer.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Verify(tok); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() error = %v, want invalid_token", err)
	}
}

func TestVerify_MalformedToken_ReturnsInvalidToken(t *testing.T) {
	svc := newTestService(t, time.Hour, &fakeClock{now: time.Now()})

	for _, tok := range []string{"", "not-a-token", "a.b.c", "Bearer abc"} {
		if _, err := svc.Verify(tok); !model.IsCategory(err, model.CategoryInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want invalid_token", tok, err)
		}
	}
}

// alg=noneの未署名トークンを受け付けないこと
func TestVerify_UnsignedToken_ReturnsInvalidToken(t *testing.T) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory@example.com",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	svc := newTestService(t, time.Hour, &fakeClock{now: now})
	if _, err := svc.Verify(unsigned); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() error = %v, want invalid_token", err)
	}
}

// expクレームのないトークンを受け付けないこと
func TestVerify_MissingExpiry_ReturnsInvalidToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com"},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	svc := newTestService(t, time.Hour, &fakeClock{now: time.Now()})
	if _, err := svc.Verify(tok); !model.IsCategory(err, model.CategoryInvalidToken) {
		t.Errorf("Verify() error = %v, want invalid_token", err)
	}
}

func TestIssue_EmptySubject_ReturnsError(t *testing.T) {
	svc := newTestService(t, time.Hour, &fakeClock{now: time.Now()})

	if _, err := svc.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestNewService_ShortSecret_ReturnsError(t *testing.T) {
	if _, err := NewService(Config{Secret: []byte("short"), TTL: time.Hour}); err == nil {
		t.Fatal("expected error for short secret")
	}
}

// 呼び出し元が設定のスライスを書き換えても署名鍵が変わらないこと
func TestNewService_CopiesSecret(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	clock := &fakeClock{now: time.Now()}
	svc, err := NewService(Config{Secret: secret, TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	tok, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	for i := range secret {
		secret[i] = 'x'
	}

	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestGenerateSecret_ReturnsRandomKeyOfMinLength(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}
	b, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}

	if len(a) != MinSecretLength {
		t.Errorf("len = %d, want %d", len(a), MinSecretLength)
	}
	if string(a) == string(b) {
		t.Error("expected different secrets")
	}
}
