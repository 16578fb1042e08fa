package wire

import (
	"testing"

	imap "github.com/kestrelmail/imap"
)

func TestReadResponseContinuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "with text", input: "+ send literal\r\n", want: "send literal"},
		{name: "bare", input: "+\r\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLexer(tt.input)
			resp, err := ReadResponse(l)
			if err != nil {
				t.Fatalf("ReadResponse() error = %v", err)
			}
			cr, ok := resp.(ContinuationRequest)
			if !ok {
				t.Fatalf("ReadResponse() = %T, want ContinuationRequest", resp)
			}
			if cr.Text != tt.want {
				t.Errorf("ContinuationRequest.Text = %q, want %q", cr.Text, tt.want)
			}
		})
	}
}

func TestReadResponseTaggedStatus(t *testing.T) {
	l := newLexer("a001 OK LOGIN completed\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	sr, ok := resp.(StatusResponse)
	if !ok {
		t.Fatalf("ReadResponse() = %T, want StatusResponse", resp)
	}
	if sr.Tag != "a001" {
		t.Errorf("Tag = %q, want %q", sr.Tag, "a001")
	}
	if sr.Type != imap.StatusOK {
		t.Errorf("Type = %q, want %q", sr.Type, imap.StatusOK)
	}
	if sr.Text != "LOGIN completed" {
		t.Errorf("Text = %q, want %q", sr.Text, "LOGIN completed")
	}
}

func TestReadResponseTaggedStatusWithCode(t *testing.T) {
	l := newLexer("a002 OK [CAPABILITY IMAP4rev1 LOGINDISABLED] done\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	sr := resp.(StatusResponse)
	if sr.Code != imap.ResponseCodeCapability {
		t.Errorf("Code = %q, want %q", sr.Code, imap.ResponseCodeCapability)
	}
	wantArgs := []Token{{Str: "IMAP4rev1"}, {Str: "LOGINDISABLED"}}
	if len(sr.Arguments) != len(wantArgs) {
		t.Fatalf("Arguments = %v, want %v", sr.Arguments, wantArgs)
	}
	for i := range wantArgs {
		if sr.Arguments[i].IsList != wantArgs[i].IsList || sr.Arguments[i].Str != wantArgs[i].Str {
			t.Errorf("Arguments[%d] = %+v, want %+v", i, sr.Arguments[i], wantArgs[i])
		}
	}
	if sr.Text != "done" {
		t.Errorf("Text = %q, want %q", sr.Text, "done")
	}
}

func TestReadResponseUntaggedStatus(t *testing.T) {
	l := newLexer("* OK [UIDVALIDITY 1] ready\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	sr, ok := resp.(StatusResponse)
	if !ok {
		t.Fatalf("ReadResponse() = %T, want StatusResponse", resp)
	}
	if sr.Tag != "" {
		t.Errorf("Tag = %q, want empty (untagged)", sr.Tag)
	}
	if sr.Code != imap.ResponseCodeUIDValidity {
		t.Errorf("Code = %q, want %q", sr.Code, imap.ResponseCodeUIDValidity)
	}
	if len(sr.Arguments) != 1 || sr.Arguments[0].Str != "1" {
		t.Errorf("Arguments = %v, want a single \"1\" token", sr.Arguments)
	}
}

func TestReadResponseRespCodeWithListArgument(t *testing.T) {
	l := newLexer("* OK [PERMANENTFLAGS (\\Deleted \\Seen \\*)] Limited\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	sr := resp.(StatusResponse)
	if sr.Code != imap.ResponseCodePermanentFlags {
		t.Fatalf("Code = %q, want %q", sr.Code, imap.ResponseCodePermanentFlags)
	}
	if len(sr.Arguments) != 1 || !sr.Arguments[0].IsList {
		t.Fatalf("Arguments = %v, want a single list token", sr.Arguments)
	}
	want := []string{`\Deleted`, `\Seen`, `\*`}
	if len(sr.Arguments[0].List) != len(want) {
		t.Fatalf("Arguments[0].List = %v, want %v", sr.Arguments[0].List, want)
	}
	for i := range want {
		if sr.Arguments[0].List[i] != want[i] {
			t.Errorf("Arguments[0].List[%d] = %q, want %q", i, sr.Arguments[0].List[i], want[i])
		}
	}
}

func TestReadResponseRespCodeWithNoArguments(t *testing.T) {
	l := newLexer("a001 OK [READ-ONLY] SELECT completed\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	sr := resp.(StatusResponse)
	if sr.Code != imap.ResponseCodeReadOnly {
		t.Fatalf("Code = %q, want %q", sr.Code, imap.ResponseCodeReadOnly)
	}
	if len(sr.Arguments) != 0 {
		t.Errorf("Arguments = %v, want empty", sr.Arguments)
	}
}

func TestReadResponseNumberedDataResponseNormalizesFlip(t *testing.T) {
	// The wire order is "<num> <name>", but callers should see Name
	// holding the response name and Num/HasNum holding the number,
	// regardless of that wire-order flip.
	l := newLexer("* 172 EXISTS\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	dr, ok := resp.(DataResponse)
	if !ok {
		t.Fatalf("ReadResponse() = %T, want DataResponse", resp)
	}
	if dr.Name != "EXISTS" {
		t.Errorf("Name = %q, want %q", dr.Name, "EXISTS")
	}
	if !dr.HasNum || dr.Num != 172 {
		t.Errorf("HasNum/Num = %v/%d, want true/172", dr.HasNum, dr.Num)
	}
}

func TestReadResponseNamedDataResponse(t *testing.T) {
	l := newLexer("* LIST (\\Noselect) \"/\" \"Foo/Bar\"\r\n")
	resp, err := ReadResponse(l)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	dr, ok := resp.(DataResponse)
	if !ok {
		t.Fatalf("ReadResponse() = %T, want DataResponse", resp)
	}
	if dr.Name != "LIST" || dr.HasNum {
		t.Errorf("Name/HasNum = %q/%v, want LIST/false", dr.Name, dr.HasNum)
	}
	if len(dr.Fields) != 3 {
		t.Fatalf("Fields = %v, want 3 entries", dr.Fields)
	}
	if !dr.Fields[0].IsList || dr.Fields[0].List[0] != `\Noselect` {
		t.Errorf("Fields[0] = %+v, want list with \\Noselect", dr.Fields[0])
	}
	if dr.Fields[1].Str != "/" {
		t.Errorf("Fields[1] = %+v, want delimiter \"/\"", dr.Fields[1])
	}
	if dr.Fields[2].Str != "Foo/Bar" {
		t.Errorf("Fields[2] = %+v, want name Foo/Bar", dr.Fields[2])
	}
}

func TestReadNamedResponseRejectsNonData(t *testing.T) {
	l := newLexer("a001 OK done\r\n")
	if _, err := ReadNamedResponse(l); err == nil {
		t.Fatal("ReadNamedResponse() on a tagged status: want error, got nil")
	}
}

func TestReadResponseGreetingTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  imap.StatusResponseType
	}{
		{name: "OK greeting", input: "* OK IMAP4rev1 ready\r\n", want: imap.StatusOK},
		{name: "PREAUTH greeting", input: "* PREAUTH already authenticated\r\n", want: imap.StatusPREAUTH},
		{name: "BYE greeting", input: "* BYE shutting down\r\n", want: imap.StatusBYE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLexer(tt.input)
			resp, err := ReadResponse(l)
			if err != nil {
				t.Fatalf("ReadResponse() error = %v", err)
			}
			sr, ok := resp.(StatusResponse)
			if !ok {
				t.Fatalf("ReadResponse() = %T, want StatusResponse", resp)
			}
			if sr.Type != tt.want {
				t.Errorf("Type = %q, want %q", sr.Type, tt.want)
			}
		})
	}
}
