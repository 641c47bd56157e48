package domain

// Zero overwrites a byte slice with zeros to clear sensitive data from memory.
// Callers should defer Zero on decrypted key material and plaintexts.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
