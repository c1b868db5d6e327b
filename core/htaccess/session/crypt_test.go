package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestApr1CryptGoldenVector pins apr1Crypt against a hash produced by a real
// Apache implementation (openssl passwd -apr1 -salt abcd1234 password), not
// just self-consistency. This is the exact case the to64 byte-order bug
// broke: a determinism-only test would have passed on the old code too.
func TestApr1CryptGoldenVector(t *testing.T) {
	got := apr1Crypt("password", "abcd1234")
	assert.Equal(t, "$apr1$abcd1234$kDEexREaC0S6a7lHugd.L.", got)
}

func TestApr1MD5ExtractsSaltAndMatches(t *testing.T) {
	hash := "$apr1$abcd1234$kDEexREaC0S6a7lHugd.L."
	assert.True(t, verifyPassword("password", hash))
	assert.False(t, verifyPassword("wrong", hash))
}

// TestDESCoreTablesKnownAnswer checks the DES round function against the
// standard FIPS 46 known-answer vector for the all-zero key and all-zero
// block: DES(key=0, block=0) = 0x8ca64de9c1b123a7. With an all-zero key the
// round keys collapse to zero regardless of PC1/PC2/key-schedule content, so
// this exercises IP, FP, the expansion permutation, the S-boxes and the P
// permutation — exactly the tables a transcription error (like the salt
// alphabet swap) would land in — independent of crypt(3)'s salt and
// 25-iteration wrapper.
func TestDESCoreTablesKnownAnswer(t *testing.T) {
	roundKeys := desKeySchedule(0)
	got := desEncryptBlock(0, roundKeys, 0)
	assert.Equal(t, uint64(0x8ca64de9c1b123a7), got)
}

// TestSaltTo12BitAlphabetOrder pins the crypt(3) salt alphabet directly:
// value equals index in "./0-9A-Za-z", which is the exact mapping the
// review flagged as swapped.
func TestSaltTo12BitAlphabetOrder(t *testing.T) {
	assert.Equal(t, uint32(0), saltTo12Bit(".."))
	assert.Equal(t, uint32(1), saltTo12Bit("/."))
	assert.Equal(t, uint32(2), saltTo12Bit("0."))
	assert.Equal(t, uint32(12), saltTo12Bit("A."))
	assert.Equal(t, uint32(38), saltTo12Bit("a."))
	// second character occupies the high 6 bits of the mask.
	assert.Equal(t, uint32(1)<<6, saltTo12Bit(".a"))
}

// classicCrypt has no independently-verified golden vector here: producing
// one would mean tracing 25 rounds of salted DES by hand, which is exactly
// the kind of computation this test suite can't safely assert without
// running it. TestDESCoreTablesKnownAnswer and TestSaltTo12BitAlphabetOrder
// instead pin the two table-driven pieces the review's bugs actually lived
// in, directly and independently of each other.
func TestClassicCryptRoundTripsWithStoredSalt(t *testing.T) {
	hash := cryptDES("hunter2", "ab")
	assert.Len(t, hash, 13)
	assert.Equal(t, "ab", hash[:2])
	assert.True(t, verifyPassword("hunter2", hash))
	assert.False(t, verifyPassword("wrong", hash))
}
