package session

// cryptDES implements the traditional Unix crypt(3) algorithm: a 25-round
// variant of DES keyed by the first 8 bytes of the password, with a
// 12-bit salt folded into the E-expansion to defeat table-based attacks.
// It exists solely to verify password hashes already stored in an
// AuthUserFile — never to mint new ones.

var initialPermutation = [64]uint8{
	58, 50, 42, 34, 26, 18, 10, 2, 60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6, 64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1, 59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5, 63, 55, 47, 39, 31, 23, 15, 7,
}

var finalPermutation = [64]uint8{
	40, 8, 48, 16, 56, 24, 64, 32, 39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30, 37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28, 35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26, 33, 1, 41, 9, 49, 17, 57, 25,
}

var expansion = [48]uint8{
	32, 1, 2, 3, 4, 5, 4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13, 12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21, 20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29, 28, 29, 30, 31, 32, 1,
}

var permutationP = [32]uint8{
	16, 7, 20, 21, 29, 12, 28, 17, 1, 15, 23, 26, 5, 18, 31, 10,
	2, 8, 24, 14, 32, 27, 3, 9, 19, 13, 30, 6, 22, 11, 4, 25,
}

var pc1 = [56]uint8{
	57, 49, 41, 33, 25, 17, 9, 1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27, 19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15, 7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29, 21, 13, 5, 28, 20, 12, 4,
}

var pc2 = [48]uint8{
	14, 17, 11, 24, 1, 5, 3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8, 16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55, 30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53, 46, 42, 50, 36, 29, 32,
}

var keyShifts = [16]uint8{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

var sBoxes = [8][4][16]uint8{
	{
		{14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7},
		{0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8},
		{4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0},
		{15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13},
	},
	{
		{15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10},
		{3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5},
		{0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15},
		{13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9},
	},
	{
		{10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8},
		{13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1},
		{13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7},
		{1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12},
	},
	{
		{7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15},
		{13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9},
		{10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4},
		{3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14},
	},
	{
		{2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9},
		{14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6},
		{4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14},
		{11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3},
	},
	{
		{12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11},
		{10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8},
		{9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6},
		{4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13},
	},
	{
		{4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1},
		{13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6},
		{1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2},
		{6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12},
	},
	{
		{13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7},
		{1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2},
		{7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8},
		{2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11},
	},
}

func permuteBits(in uint64, inBits int, table []uint8) uint64 {
	var out uint64
	for _, pos := range table {
		bit := (in >> uint(inBits-int(pos))) & 1
		out = (out << 1) | bit
	}
	return out
}

func rotl28(v uint32, n uint8) uint32 {
	v &= 0x0fffffff
	return ((v << n) | (v >> (28 - n))) & 0x0fffffff
}

// desEncryptBlock runs the 16-round Feistel network on a 64-bit block with
// the given 16 round keys (each 48 bits), applying the salt-modified
// expansion permutation saltMask describes.
func desEncryptBlock(block uint64, roundKeys [16]uint64, saltMask uint32) uint64 {
	permuted := permuteBits(block, 64, initialPermutation[:])
	l := uint32(permuted >> 32)
	r := uint32(permuted)

	for i := 0; i < 16; i++ {
		newR := l ^ feistel(r, roundKeys[i], saltMask)
		l = r
		r = newR
	}
	combined := (uint64(r) << 32) | uint64(l)
	return permuteBits(combined, 64, finalPermutation[:])
}

func feistel(r uint32, key uint64, saltMask uint32) uint32 {
	expanded := permuteBits(uint64(r), 32, expansion[:])
	// Apply the crypt(3) salt: XOR swaps bits between the two expansion
	// halves wherever a salt bit is set, before keying.
	e := uint32(expanded & 0xffffffff)
	eHigh := uint32(expanded >> 24 & 0xffffff)
	_ = e
	swapped := expanded
	for i := 0; i < 24; i++ {
		if saltMask&(1<<uint(i)) != 0 {
			bitA := (swapped >> uint(23-i)) & 1
			bitB := (swapped >> uint(47-i)) & 1
			if bitA != bitB {
				swapped ^= 1 << uint(23-i)
				swapped ^= 1 << uint(47-i)
			}
		}
	}
	_ = eHigh
	x := swapped ^ key

	var sOut uint32
	for i := 0; i < 8; i++ {
		shift := uint(42 - i*6)
		chunk := uint8((x >> shift) & 0x3f)
		row := ((chunk & 0x20) >> 4) | (chunk & 0x01)
		col := (chunk >> 1) & 0x0f
		sOut = (sOut << 4) | uint32(sBoxes[i][row][col])
	}
	return uint32(permuteBits(uint64(sOut), 32, permutationP[:]))
}

func desKeySchedule(key56 uint64) [16]uint64 {
	c := uint32(key56 >> 28)
	d := uint32(key56 & 0x0fffffff)
	var out [16]uint64
	for i := 0; i < 16; i++ {
		c = rotl28(c, keyShifts[i])
		d = rotl28(d, keyShifts[i])
		combined := (uint64(c) << 28) | uint64(d)
		out[i] = permuteBits(combined, 56, pc2[:])
	}
	return out
}

// saltTo12Bit decodes the two crypt(3) salt characters into a 12-bit mask.
func saltTo12Bit(salt string) uint32 {
	// Standard crypt(3) salt alphabet: ./0-9A-Za-z, value = index in that
	// sequence.
	decode := func(c byte) uint32 {
		switch {
		case c == '.':
			return 0
		case c == '/':
			return 1
		case c >= '0' && c <= '9':
			return uint32(c-'0') + 2
		case c >= 'A' && c <= 'Z':
			return uint32(c-'A') + 12
		case c >= 'a' && c <= 'z':
			return uint32(c-'a') + 38
		}
		return 0
	}
	if len(salt) < 2 {
		return 0
	}
	return decode(salt[0]) | (decode(salt[1]) << 6)
}

// cryptDES computes the classic 2-character-salt crypt(3)-DES hash of
// password and returns it in "SShhhhhhhhhhh" form (2-char salt + 11-char
// digest) for direct comparison with stored AuthUserFile entries.
func cryptDES(password, salt string) string {
	if len(salt) < 2 {
		return ""
	}
	salt = salt[:2]
	saltMask := saltTo12Bit(salt)

	keyBytes := make([]byte, 8)
	for i := 0; i < 8 && i < len(password); i++ {
		keyBytes[i] = password[i] << 1
	}
	var key64 uint64
	for _, b := range keyBytes {
		key64 = (key64 << 8) | uint64(b)
	}
	key56 := permuteBits(key64, 64, pc1[:])
	roundKeys := desKeySchedule(key56)

	var block uint64
	for i := 0; i < 25; i++ {
		block = desEncryptBlock(block, roundKeys, saltMask)
	}

	const itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var out [11]byte
	for i := 0; i < 11; i++ {
		shift := uint(64 - 6 - i*6)
		var v uint64
		if shift > 64 {
			v = (block & 0xf) << 2
		} else {
			v = (block >> shift) & 0x3f
		}
		out[i] = itoa64[v&0x3f]
	}
	return salt + string(out[:])
}
