/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/resolver"
	"bennypowers.dev/cjsresolve/testutil"
)

func TestResolve_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	mfs := testutil.NewFixtureFS(t, "fixtures/resolve/nested", "/proj")
	r := resolver.New(&config.Options{FS: mfs, Roots: []string{"/proj"}})

	cases := map[string][2]string{
		"a":               {"/proj/index.js", "/proj/node_modules/a/lib/a.js"},
		"b":               {"/proj/node_modules/a/lib/a.js", "/proj/node_modules/a/node_modules/b/index.js"},
		"c":               {"/proj/node_modules/a/node_modules/b/index.js", "/proj/node_modules/c/index.js"},
		"@scope/pkg/util": {"/proj/index.js", "/proj/node_modules/@scope/pkg/util.js"},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64*len(cases))
	for i := range 64 {
		for request, c := range cases {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := r.Resolve(context.Background(), request, c[0])
				if err != nil {
					errs <- fmt.Errorf("worker %d: %s: %w", i, request, err)
					return
				}
				if want := filepath.FromSlash(c[1]); got != want {
					errs <- fmt.Errorf("worker %d: %s: got %s, want %s", i, request, got, want)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
