// Command mockbucket serves a synthetic GOES archive over the ListObjectsV2
// REST interface. Hour-prefix listings return deterministic ABI and GLM keys,
// and every key serves reproducible payload bytes, so the service and
// framecheck can run without reaching the real bucket.
//
// Usage:
//
//	go run ./cmd/mockbucket -addr :9090
//	BUCKET_URL=http://localhost:9090 go run ./cmd/goesframes
package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meteoaustral/goes-frames/internal/domain"
)

type bucket struct {
	satellite string
	cadence   time.Duration
	abiSize   int64
	glmSize   int64
	maxKeys   int
}

type object struct {
	key     string
	size    int64
	created time.Time
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	satellite := flag.String("satellite", "G19", "satellite tag used in generated keys")
	cadence := flag.Duration("cadence", 10*time.Minute, "ABI scan cadence")
	abiSize := flag.Int64("abi-size", 64<<10, "approximate bytes per imagery object")
	glmSize := flag.Int64("glm-size", 8<<10, "approximate bytes per lightning object")
	maxKeys := flag.Int("max-keys", 1000, "listing page size")
	flag.Parse()

	b := &bucket{
		satellite: *satellite,
		cadence:   *cadence,
		abiSize:   *abiSize,
		glmSize:   *glmSize,
		maxKeys:   *maxKeys,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", b.handle)

	log.Printf("mockbucket listening on %s (satellite %s, cadence %s)", *addr, *satellite, *cadence)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func (b *bucket) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		if r.URL.Query().Get("list-type") == "2" {
			b.handleList(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}
	b.handleObject(w, r)
}

func (b *bucket) handleList(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	objects := b.objectsForPrefix(prefix)

	start := 0
	if token := r.URL.Query().Get("continuation-token"); token != "" {
		if i, err := strconv.Atoi(token); err == nil && i >= 0 && i <= len(objects) {
			start = i
		}
	}
	upto := start + b.maxKeys
	if upto > len(objects) {
		upto = len(objects)
	}
	page := objects[start:upto]

	result := listBucketResult{
		Name:        "mockbucket",
		Prefix:      prefix,
		KeyCount:    len(page),
		MaxKeys:     b.maxKeys,
		IsTruncated: upto < len(objects),
	}
	if result.IsTruncated {
		result.NextContinuationToken = strconv.Itoa(upto)
	}
	for _, o := range page {
		result.Contents = append(result.Contents, contents{
			Key:          o.key,
			LastModified: o.created.Format("2006-01-02T15:04:05.000Z"),
			Size:         o.size,
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	//nolint:errcheck // best-effort response
	w.Write([]byte(xml.Header))
	//nolint:errcheck // best-effort response
	xml.NewEncoder(w).Encode(result)
}

func (b *bucket) handleObject(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	if _, err := domain.ParseKeyTimes(key); err != nil {
		http.NotFound(w, r)
		return
	}

	size := b.sizeFor(key)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	rng := rand.New(rand.NewSource(int64(keyHash(key))))
	buf := make([]byte, 32<<10)
	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		//nolint:errcheck // math/rand reads never fail
		rng.Read(buf[:n])
		if _, err := w.Write(buf[:n]); err != nil {
			return
		}
		remaining -= n
	}
}

// objectsForPrefix regenerates the hour bucket a listing prefix names.
// Objects whose creation stamp lies in the future are withheld, matching how
// the real archive fills in as scans complete.
func (b *bucket) objectsForPrefix(prefix string) []object {
	parts := strings.SplitN(prefix, "/", 5)
	if len(parts) < 4 {
		return nil
	}
	year, err1 := strconv.Atoi(parts[1])
	doy, err2 := strconv.Atoi(parts[2])
	hour, err3 := strconv.Atoi(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	hourStart := time.Date(year, time.January, 1, hour, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)

	var generated []object
	switch parts[0] {
	case "ABI-L2-CMIPF":
		for ch := 1; ch <= 16; ch++ {
			channel := domain.Channel(fmt.Sprintf("C%02d", ch))
			first := hourStart.Add(20*time.Second + 400*time.Millisecond)
			for scan := first; scan.Before(hourStart.Add(time.Hour)); scan = scan.Add(b.cadence) {
				generated = append(generated, b.imageryObject(channel, scan))
			}
		}
	case "GLM-L2-LCFA":
		for scan := hourStart; scan.Before(hourStart.Add(time.Hour)); scan = scan.Add(20 * time.Second) {
			generated = append(generated, b.lightningObject(scan))
		}
	default:
		return nil
	}

	cutoff := time.Now().UTC()
	var kept []object
	for _, o := range generated {
		if strings.HasPrefix(o.key, prefix) && !o.created.After(cutoff) {
			kept = append(kept, o)
		}
	}
	return kept
}

func (b *bucket) imageryObject(ch domain.Channel, scan time.Time) object {
	end := scan.Add(9*time.Minute + 30*time.Second)
	created := end.Add(29*time.Second + 800*time.Millisecond)
	key := fmt.Sprintf("%ss%s_e%s_c%s.nc",
		domain.ImageryHourPrefix(b.satellite, ch, scan), stamp(scan), stamp(end), stamp(created))
	return object{key: key, size: sizeAround(b.abiSize, key), created: created}
}

func (b *bucket) lightningObject(scan time.Time) object {
	end := scan.Add(20 * time.Second)
	created := end.Add(2*time.Second + 600*time.Millisecond)
	key := fmt.Sprintf("%ss%s_e%s_c%s.nc",
		domain.LightningHourPrefix(b.satellite, scan), stamp(scan), stamp(end), stamp(created))
	return object{key: key, size: sizeAround(b.glmSize, key), created: created}
}

func (b *bucket) sizeFor(key string) int64 {
	if strings.HasPrefix(key, "GLM-") {
		return sizeAround(b.glmSize, key)
	}
	return sizeAround(b.abiSize, key)
}

// sizeAround varies the base size per key so listings do not look uniform.
func sizeAround(base int64, key string) int64 {
	return base + int64(keyHash(key)%uint64(base/8+1))
}

func keyHash(key string) uint64 {
	h := fnv.New64a()
	//nolint:errcheck // fnv never fails
	h.Write([]byte(key))
	return h.Sum64()
}

// stamp renders a time in the sYYYYDDDHHMMSST digit form used by object keys.
func stamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d%03d%02d%02d%02d%d",
		t.Year(), t.YearDay(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Second/10))
}

// ListObjectsV2 response shape.

type listBucketResult struct {
	XMLName               xml.Name   `xml:"ListBucketResult"`
	Name                  string     `xml:"Name"`
	Prefix                string     `xml:"Prefix"`
	KeyCount              int        `xml:"KeyCount"`
	MaxKeys               int        `xml:"MaxKeys"`
	IsTruncated           bool       `xml:"IsTruncated"`
	NextContinuationToken string     `xml:"NextContinuationToken,omitempty"`
	Contents              []contents `xml:"Contents"`
}

type contents struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	Size         int64  `xml:"Size"`
}
