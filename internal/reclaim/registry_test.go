// Licensed under the MIT License. See LICENSE file in the project root for details.

package reclaim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistryAcquireReuseRelease(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		var r registry

		Convey("When acquiring an entry", func() {
			cb := r.acquireEntry()

			Convey("Then it starts with the sentinel local epoch", func() {
				So(cb.localEpoch.Load(), ShouldEqual, uint32(numEpochs))
			})

			Convey("And it is marked in use", func() {
				So(cb.inUse.Load(), ShouldBeTrue)
			})

			Convey("When releasing and re-acquiring", func() {
				r.releaseEntry(cb)
				cb2 := r.acquireEntry()

				Convey("Then the same entry is reused rather than a new one allocated", func() {
					So(cb2, ShouldEqual, cb)
				})
			})
		})

		Convey("When two entries are acquired without releasing", func() {
			cb1 := r.acquireEntry()
			cb2 := r.acquireEntry()

			Convey("Then they are distinct", func() {
				So(cb1, ShouldNotEqual, cb2)
			})

			Convey("And both are reachable via forEach", func() {
				seen := map[*controlBlock]bool{}
				r.forEach(func(cb *controlBlock) bool {
					seen[cb] = true
					return true
				})
				So(seen[cb1], ShouldBeTrue)
				So(seen[cb2], ShouldBeTrue)
			})
		})
	})
}

func TestRegistryForEachEarlyStop(t *testing.T) {
	Convey("Given a registry with three entries", t, func() {
		var r registry
		r.acquireEntry()
		r.acquireEntry()
		r.acquireEntry()

		Convey("When forEach's callback returns false on the first call", func() {
			count := 0
			r.forEach(func(cb *controlBlock) bool {
				count++
				return false
			})

			Convey("Then iteration stops immediately", func() {
				So(count, ShouldEqual, 1)
			})
		})
	})
}
