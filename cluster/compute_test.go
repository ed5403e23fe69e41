package main

import (
	"bytes"
	"math/rand"
	"os"
	"testing"
)

func TestDistanceMatrix(t *testing.T) {
	gettys, err := os.ReadFile("../testdata/gettysburg.txt")
	if err != nil {
		t.Fatalf("%v", err)
	}
	rnd := rand.New(rand.NewSource(1))
	noise := make([]byte, len(gettys))
	rnd.Read(noise)
	names := []string{"gettys", "copy", "noise"}
	data := [][]byte{gettys, bytes.Clone(gettys), noise}

	for _, intelligence := range []string{"ctw", "zstd"} {
		c, err := newComplexity(intelligence)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		mat, err := distanceMatrix(c, names, data)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if len(mat) != 3 {
			t.Fatalf("%v", mat)
		}
		// gettys-copy, gettys-noise, copy-noise
		if mat[0] >= mat[1] || mat[0] >= mat[2] {
			t.Errorf("%s: a copy is not the nearest: %v", intelligence, mat)
		}
	}

	if _, err := newComplexity("gzip"); err == nil {
		t.Errorf("unknown intelligence accepted")
	}
}
