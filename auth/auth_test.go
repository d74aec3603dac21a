package auth

import "testing"

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if string(digest) == "hunter2" {
		t.Fatal("digest stores the plain secret")
	}
	if !Verify("hunter2", digest) {
		t.Error("correct secret rejected")
	}
	if Verify("hunter3", digest) {
		t.Error("wrong secret accepted")
	}
	if Verify("hunter2", nil) {
		t.Error("empty digest accepted")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash("same")
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(b) {
		t.Error("two hashes of the same secret are identical")
	}
}
