package gpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKeyCheckOrder(t *testing.T) {
	tests := []struct {
		name     string
		key      *Key
		sign     bool
		encrypt  bool
		wantCode Code
	}{
		{
			name:     "revoked wins over missing capability",
			key:      &Key{Revoked: true, Expired: true, Invalid: true},
			encrypt:  true,
			wantCode: CodeKeyRevoked,
		},
		{
			name:     "expired wins over invalid",
			key:      &Key{Expired: true, Invalid: true},
			sign:     true,
			wantCode: CodeKeyExpired,
		},
		{
			name:     "invalid",
			key:      &Key{Invalid: true},
			wantCode: CodeKeyInvalid,
		},
		{
			name:     "cannot encrypt checked before cannot sign",
			key:      &Key{},
			sign:     true,
			encrypt:  true,
			wantCode: CodeKeyCannotEncrypt,
		},
		{
			name:     "cannot sign",
			key:      &Key{CanEncrypt: true},
			sign:     true,
			encrypt:  true,
			wantCode: CodeKeyCannotSign,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key, tt.sign, tt.encrypt)
			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}

func TestValidateKeyCapabilityOnlyWhenRequested(t *testing.T) {
	key := &Key{} // valid but without any capability

	assert.NoError(t, ValidateKey(key, false, false))
	assert.Equal(t, CodeKeyCannotEncrypt, CodeOf(ValidateKey(key, false, true)))
	assert.Equal(t, CodeKeyCannotSign, CodeOf(ValidateKey(key, true, false)))
}

func TestValidateKeyUsable(t *testing.T) {
	key := &Key{CanSign: true, CanEncrypt: true}
	assert.NoError(t, ValidateKey(key, true, true))
}

func TestIsUIDTrusted(t *testing.T) {
	g := New(&fakeEngine{})

	tests := []struct {
		name  string
		uids  []UserID
		email string
		want  bool
	}{
		{
			name:  "full validity is trusted",
			uids:  []UserID{{Email: "a@b.com", Validity: ValidityFull}},
			email: "a@b.com",
			want:  true,
		},
		{
			name:  "marginal validity is not",
			uids:  []UserID{{Email: "a@b.com", Validity: ValidityMarginal}},
			email: "a@b.com",
			want:  false,
		},
		{
			name: "ultimate uid for another email does not help",
			uids: []UserID{
				{Email: "a@b.com", Validity: ValidityMarginal},
				{Email: "other@b.com", Validity: ValidityUltimate},
			},
			email: "a@b.com",
			want:  false,
		},
		{
			name: "later uid counts, not only the first",
			uids: []UserID{
				{Email: "other@b.com", Validity: ValidityUnknown},
				{Email: "a@b.com", Validity: ValidityUltimate},
			},
			email: "a@b.com",
			want:  true,
		},
		{
			name:  "revoked uid is not trusted",
			uids:  []UserID{{Email: "a@b.com", Revoked: true, Validity: ValidityUltimate}},
			email: "a@b.com",
			want:  false,
		},
		{
			name:  "invalid uid is not trusted",
			uids:  []UserID{{Email: "a@b.com", Invalid: true, Validity: ValidityUltimate}},
			email: "a@b.com",
			want:  false,
		},
		{
			name:  "no substring matching on the email",
			uids:  []UserID{{Email: "a@b.com", Validity: ValidityUltimate}},
			email: "a@b",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := &Key{UserIDs: tt.uids}
			assert.Equal(t, tt.want, g.IsUIDTrusted(key, tt.email))
		})
	}
}

func TestIsUIDTrustedConfigurableThreshold(t *testing.T) {
	key := &Key{UserIDs: []UserID{{Email: "a@b.com", Validity: ValidityMarginal}}}

	strict := New(&fakeEngine{})
	relaxed := New(&fakeEngine{}, WithTrustThreshold(ValidityMarginal))

	assert.False(t, strict.IsUIDTrusted(key, "a@b.com"))
	assert.True(t, relaxed.IsUIDTrusted(key, "a@b.com"))
}
