//go:build rp2350

package main

// RP2350 TIMER0; the RP2040 timer address is not valid here
const timerBase = 0x400B0000
