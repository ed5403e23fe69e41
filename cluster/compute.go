// Command cluster computes the normalized compression distances between the files of a directory.
// A compressor serves as an approximation of the Kolmogorov complexity K, and the distance of x and y is
//
//	(K(xy) - min(K(x), K(y))) / max(K(x), K(y))
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/fumin/arcd"
)

var (
	intelligenceType = flag.String("i", "ctw", "intelligence type: adaptive, order1, ctw or zstd")
	dataDir          = flag.String("d", "mammals10", "data directory")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	if err := run(*intelligenceType, *dataDir); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(intelligence, dir string) error {
	names, err := listFiles(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	data := make([][]byte, 0, len(names))
	for _, name := range names {
		b, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "")
		}
		data = append(data, b)
	}

	c, err := newComplexity(intelligence)
	if err != nil {
		return errors.Wrap(err, "")
	}
	distMat, err := distanceMatrix(c, names, data)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := display(names, distMat); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func display(data []string, distMat []float64) error {
	// Print data as a comma separated array.
	buf := bytes.NewBuffer(nil)
	for i, fpath := range data {
		if err := buf.WriteByte('"'); err != nil {
			return errors.Wrap(err, "")
		}

		name := filepath.Base(fpath)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := buf.WriteString(base); err != nil {
			return errors.Wrap(err, "")
		}

		if err := buf.WriteByte('"'); err != nil {
			return errors.Wrap(err, "")
		}

		if i == len(data)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Printf("[%s]", buf.Bytes())

	// Print distance matrix as a comma separated array.
	buf.Reset()
	for i, f := range distMat {
		if _, err := buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(distMat)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Printf("[%s]", buf.Bytes())

	return nil
}

// complexity returns the compressed size of b.
type complexity func(b []byte) (float64, error)

func newComplexity(intelligence string) (complexity, error) {
	if intelligence == "zstd" {
		return complexityZstd, nil
	}
	m, err := arcd.ParseMethod(intelligence)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cfg := arcd.Config{Method: m}
	return func(b []byte) (float64, error) {
		return complexityArcd(cfg, b)
	}, nil
}

func complexityArcd(cfg arcd.Config, b []byte) (float64, error) {
	buf := bytes.NewBuffer(nil)
	if err := arcd.Compress(buf, bytes.NewReader(b), cfg); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(buf.Len()), nil
}

func complexityZstd(b []byte) (float64, error) {
	buf := bytes.NewBuffer(nil)
	enc, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	if _, err := enc.Write(b); err != nil {
		enc.Close()
		return -1, errors.Wrap(err, "")
	}
	if err := enc.Close(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(buf.Len()), nil
}

func distance(c complexity, kx, ky float64, x, y []byte) (float64, error) {
	xy := make([]byte, 0, len(x)+len(y))
	xy = append(append(xy, x...), y...)
	kxy, err := c(xy)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}

	minxy := kx
	if ky < kx {
		minxy = ky
	}
	maxxy := kx
	if ky > kx {
		maxxy = ky
	}

	dist := (kxy - minxy) / maxxy
	return dist, nil
}

func distanceMatrix(c complexity, names []string, data [][]byte) ([]float64, error) {
	k := make([]float64, len(data))
	for i, b := range data {
		var err error
		if k[i], err = c(b); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}

	n := len(data)
	if n < 2 {
		return nil, errors.Errorf("need at least two files, got %d", n)
	}
	mat := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dist, err := distance(c, k[i], k[j], data[i], data[j])
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			mat = append(mat, dist)
			log.Printf("\"%s\"-\"%s\": %f", names[i], names[j], dist)
		}
	}
	return mat, nil
}

func listFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		fpath := filepath.Join(dir, f.Name())
		data = append(data, fpath)
	}
	return data, nil
}
