package codec_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ssargent/osubuf/pkg/codec"
)

// ExampleWriter_basic demonstrates writing a sequence of fields and reading
// them back in the same order
func ExampleWriter_basic() {
	w := codec.NewWriter()

	if err := w.WriteUint8(0); err != nil {
		log.Fatal(err)
	}
	if err := w.WriteInt32(20230101); err != nil {
		log.Fatal(err)
	}
	if err := w.WriteString("peppy", false); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", w.Len())

	r := codec.NewReader(w.Bytes())
	mode, _ := r.ReadUint8()
	version, _ := r.ReadInt32()
	player, present, _ := r.ReadString()

	fmt.Printf("Mode: %d\n", mode)
	fmt.Printf("Version: %d\n", version)
	fmt.Printf("Player: %s (present=%t)\n", player, present)
	fmt.Printf("At end: %t\n", r.AtEnd())

	// Output:
	// Encoded 12 bytes
	// Mode: 0
	// Version: 20230101
	// Player: peppy (present=true)
	// At end: true
}

// ExampleWriter_WriteVarint shows the base-128 layout of a varint
func ExampleWriter_WriteVarint() {
	w := codec.NewWriter()
	if err := w.WriteVarint(300); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("% x\n", w.Bytes())

	v, err := codec.NewReader(w.Bytes()).ReadVarint()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v)

	// Output:
	// ac 02
	// 300
}

// ExampleWriter_WriteString shows the three string encodings
func ExampleWriter_WriteString() {
	absent := codec.NewWriter()
	_ = absent.WriteString("", true)

	empty := codec.NewWriter()
	_ = empty.WriteString("", false)

	text := codec.NewWriter()
	_ = text.WriteString("osu", false)

	fmt.Printf("absent: % x\n", absent.Bytes())
	fmt.Printf("empty:  % x\n", empty.Bytes())
	fmt.Printf("text:   % x\n", text.Bytes())

	// Output:
	// absent: 00
	// empty:  0b 00
	// text:   0b 03 6f 73 75
}

// ExampleReader_ReadDateTime demonstrates tick-based timestamps
func ExampleReader_ReadDateTime() {
	w := codec.NewWriter()
	played := time.Date(2014, 3, 15, 18, 30, 0, 0, time.UTC)
	if err := w.WriteDateTime(played); err != nil {
		log.Fatal(err)
	}

	raw, _ := codec.NewReader(w.Bytes()).ReadUint64()
	fmt.Printf("Ticks: %d\n", raw)

	got, _ := codec.NewReader(w.Bytes()).ReadDateTime()
	fmt.Printf("Time: %s\n", got.Format(time.RFC3339))

	// Output:
	// Ticks: 635305050000000000
	// Time: 2014-03-15T18:30:00Z
}

// ExampleReader_errorHandling demonstrates checking for short input
func ExampleReader_errorHandling() {
	r := codec.NewReader([]byte{0x01, 0x02})

	fmt.Printf("Can read 4 bytes: %t\n", r.CanRead(4))

	_, err := r.ReadUint32()
	if err != nil {
		fmt.Printf("Underflow: %t\n", errors.Is(err, codec.ErrBufferUnderflow))
	}

	// Output:
	// Can read 4 bytes: false
	// Underflow: true
}
