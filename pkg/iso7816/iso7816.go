/*
Package iso7816 implements data structures and logic to interact with smart cards according to the ISO/IEC 7816 standard.

This package provides the fundamental building blocks for APDU (Application Protocol Data Unit) communication, including Command and Response structures, Status Word (SW) analysis, command builders for SELECT, READ BINARY, READ RECORD, GET RESPONSE and GET DATA, and a paginated file reader.

# Fundamentals

The communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x6CXX: Error, wrong length expectation (XX is the correct length).
  - Other: Various error conditions.

StatusWord.Describe turns any of these into a human-readable message, resolving
the well-known ISO codes from an exact-match table and the dynamic ranges
(61XX, 6CXX, 63CX) from their SW2 payload.

# Reading a File

Transparent elementary files are selected by their two-byte identifier and read
in chunks with READ BINARY. FileReadSession drives the full exchange as a small
state machine and accumulates the content:

	data, session, err := iso7816.ReadFile(card, cls, 0x2F01, 300)
	if err != nil {
	    log.Printf("read failed after %d chunk(s): %v", session.Reads(), err)
	    return
	}
	fmt.Printf("read %d bytes\n", len(data))

# Select Responses

A successful SELECT may return File Control Information, wrapped in one of the
6F/62/64 templates. ParseFCI extracts the DF name, application label and file
identifier, and keeps everything else for inspection:

	fci, err := iso7816.ParseFCI(resp.Data)
	if err == nil {
	    fmt.Println(fci.Describe())
	}
*/
package iso7816
