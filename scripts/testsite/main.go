// Command testsite serves a page that writes cookies, Cache Storage and
// IndexedDB on demand, for exercising storagectl against a real browser:
//
//	go run ./scripts/testsite 3000
//	storagectl --launch --headless=false watch http://localhost:3000
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>storagectl test site</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; }
  button { margin: 0.25rem; padding: 0.5rem 1rem; }
  #log { font-family: monospace; white-space: pre; margin-top: 1rem; }
</style>
</head>
<body>
<h1>storagectl test site</h1>
<button onclick="putCache()">cache.put</button>
<button onclick="newCache()">caches.open (new)</button>
<button onclick="putIDB()">IndexedDB put</button>
<button onclick="newDB()">IndexedDB open (new)</button>
<button onclick="setCookie()">document.cookie</button>
<button onclick="fill()">fill 1 MiB</button>
<div id="log"></div>
<script>
let n = 0;
const log = (m) => document.getElementById('log').textContent += m + '\n';

async function putCache() {
  const c = await caches.open('v1');
  await c.put('/item/' + (++n), new Response('item ' + n));
  log('cache v1 put /item/' + n);
}
async function newCache() {
  const name = 'cache-' + Date.now();
  await caches.open(name);
  log('cache opened ' + name);
}
function openDB(name) {
  return new Promise((resolve, reject) => {
    const req = indexedDB.open(name, 1);
    req.onupgradeneeded = () => req.result.createObjectStore('items');
    req.onsuccess = () => resolve(req.result);
    req.onerror = () => reject(req.error);
  });
}
async function putIDB() {
  const db = await openDB('testdb');
  const tx = db.transaction('items', 'readwrite');
  tx.objectStore('items').put('value ' + (++n), 'key' + n);
  tx.oncomplete = () => log('idb testdb/items put key' + n);
}
async function newDB() {
  const name = 'db-' + Date.now();
  await openDB(name);
  log('idb opened ' + name);
}
function setCookie() {
  document.cookie = 'visit=' + (++n) + '; path=/; SameSite=Lax';
  log('cookie visit=' + n);
}
async function fill() {
  const c = await caches.open('bulk');
  await c.put('/bulk/' + Date.now(), new Response(new Uint8Array(1 << 20)));
  log('cache bulk +1 MiB');
}
</script>
</body>
</html>`

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.DateTime})

	port := "3000"
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, page)
	})

	mux.HandleFunc("/set-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "server_session",
			Value:    fmt.Sprintf("%d", time.Now().UnixNano()),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
			MaxAge:   3600,
		})
		_, _ = fmt.Fprintln(w, "cookie set")
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mux.ServeHTTP(w, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request")
	})

	addr := "localhost:" + port
	log.Infof("test site on http://%s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
