package payu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testKey  = "gtKFFx"
	testSalt = "eCwWELxi"
)

func baseFields() Fields {
	return Fields{
		"txnid":       "TX100",
		"amount":      "100.00",
		"productinfo": "Course",
		"firstname":   "Asha",
		"email":       "asha@example.com",
	}
}

func TestSubmissionHash(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(Fields)
		expected string
	}{
		{
			name:     "without additional charges",
			mutate:   func(Fields) {},
			expected: "96de2a653d272fadda741e24fe1c865a5c9332e7af2cdc3cee45560bde662e240ec3ca26ff6bc225c95743cf5fd9f0a3072e52b7857f56504a53de9fcf8b5f57",
		},
		{
			name: "with additional charges appended",
			mutate: func(f Fields) {
				f["additional_charges"] = "5.00"
			},
			expected: "6f260ae343241b3e3dd1b2fa795650e07139f66cf0d8c799b2a7965655dd76cc8cc61e2f07483eb7fbdfc1f3f712f0395e9992cc410bdc220378c8408001d146",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := baseFields()
			tt.mutate(f)
			assert.Equal(t, tt.expected, SubmissionHash(testKey, testSalt, f))
		})
	}
}

func TestReverseHash(t *testing.T) {
	f := baseFields()
	f["status"] = "success"

	assert.Equal(t,
		"feb479652c7919d01e9167bb7b6295c2e61e4292451fec9f8da71367922cbf6f9bb896d4de16229967c89c35b4e9b5c50b1468d9694f9769c8835e8cf69d662f",
		ReverseHash(testKey, testSalt, f))

	// 附加费前置到最前面，而不是像出站那样追加到末尾
	f["additional_charges"] = "5.00"
	assert.Equal(t,
		"c330f2d87a4bce52e4c810c5cf2499a05eb6f3d429fd8252192a108aaf83904da25748ce6a91820371dd911644c2e025a16efe49a31c50cb617d6908771107bd",
		ReverseHash(testKey, testSalt, f))
}

// 逐字节核对拼接串：udf5 与 salt、status 与 udf5 之间是固定的
// 五个空槽（六个竖线），远端按同样的串计算，错一个竖线就全部对不上
func TestHashMatchesWireConcatenation(t *testing.T) {
	f := baseFields()

	submission := "gtKFFx|TX100|100.00|Course|Asha|asha@example.com" +
		strings.Repeat("|", 11) + "eCwWELxi"
	assert.Equal(t, lowerSha512(submission), SubmissionHash(testKey, testSalt, f))

	f["status"] = "success"
	reverse := "eCwWELxi|success" + strings.Repeat("|", 11) +
		"asha@example.com|Asha|Course|100.00|TX100|gtKFFx"
	assert.Equal(t, lowerSha512(reverse), ReverseHash(testKey, testSalt, f))
}

func TestReverseHashMissingFieldsActAsEmpty(t *testing.T) {
	// 缺失键与显式空串必须产出同一摘要
	explicit := Fields{
		"txnid":  "TX1",
		"status": "failure",
		"udf1":   "",
		"email":  "",
	}
	sparse := Fields{
		"txnid":  "TX1",
		"status": "failure",
	}
	assert.Equal(t,
		ReverseHash(testKey, testSalt, explicit),
		ReverseHash(testKey, testSalt, sparse))
}

func TestVerifyRequestHash(t *testing.T) {
	assert.Equal(t,
		"9632475eaac8ed2dc32ec50a32e106353ef10cdbd47e7f2ae226ffeeeca037171878340b90aa5f1225a93e3203b4e8cd9875ef825263995d1eda3c0e2665e1f0",
		VerifyRequestHash(testKey, testSalt, "TX100"))
}

func TestHashIsLowercaseHex(t *testing.T) {
	got := SubmissionHash(testKey, testSalt, baseFields())
	assert.Len(t, got, 128)
	for _, r := range got {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'),
			"unexpected rune %q in hash", r)
	}
}

func TestTamperedFieldChangesReverseHash(t *testing.T) {
	f := baseFields()
	f["status"] = "success"
	original := ReverseHash(testKey, testSalt, f)

	f["amount"] = "1.00"
	assert.NotEqual(t, original, ReverseHash(testKey, testSalt, f))
}
