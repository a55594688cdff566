// https://github.com/usbarmory/armory-boot
//
// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build armory

package main

import (
	"log"

	"github.com/usbarmory/tamago/arm"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"
)

// defined in boot.s
func exec(kernel uint32, params uint32)
func svc()

// jump is the boot.Hook of the board: it leaves Go through a supervisor
// call, so that the image is entered from SVC mode with caches clean and
// disabled.
func jump(entry uint64) {
	arm.SystemExceptionHandler = func(n int) {
		if n != arm.SUPERVISOR {
			panic("unhandled exception")
		}

		log.Printf("elfboot: starting image@%x\n", entry)

		usbarmory.LED("blue", false)
		usbarmory.LED("white", false)

		// RNGB driver doesn't play well with previous initializations
		imx6ul.RNGB.Reset()

		imx6ul.ARM.FlushDataCache()
		imx6ul.ARM.DisableCache()

		exec(uint32(entry), 0)
	}

	svc()
}
