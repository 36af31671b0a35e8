package api

import (
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/gebo/internal/contract"
	"github.com/starford/gebo/internal/convert"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/testutil"
)

const templateBody = "{{employee_name}} / {{project_name}} / {{reason_for_leave}} / {{contract_date}}"

func newTestAPI(t *testing.T, conv convert.Converter) (*httptest.Server, string) {
	t.Helper()
	templates := testutil.TestTemplates(t, templateBody)
	root, store := testutil.TestOutput(t)
	db := testutil.TestRegistry(t)
	svc := contract.NewService(templates, store, db, nil)

	srv := httptest.NewServer(NewRouter(svc, conv, false, "", nil))
	t.Cleanup(srv.Close)
	return srv, root
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeArtifact(t *testing.T, resp *http.Response) ArtifactResponse {
	t.Helper()
	defer resp.Body.Close()
	var out ArtifactResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out errResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return out.Error
}

func countArtifactFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// readOnlyArtifactFile returns the content of the single generated
// file under root.
func readOnlyArtifactFile(t *testing.T, root string) []byte {
	t.Helper()
	var data []byte
	found := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		found++
		data, err = os.ReadFile(p)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if found != 1 {
		t.Fatalf("found %d generated files, want 1", found)
	}
	return data
}

func TestCreateAndDownloadContract(t *testing.T) {
	srv, root := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/contracts", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	artifact := decodeArtifact(t, resp)
	if artifact.ID == "" {
		t.Fatal("empty artifact id")
	}
	if artifact.FileName != "Jane_Doe_Contract.docx" {
		t.Errorf("file_name = %q", artifact.FileName)
	}
	if artifact.Kind != string(models.KindEmployment) {
		t.Errorf("kind = %q", artifact.Kind)
	}

	onDisk := readOnlyArtifactFile(t, root)

	dl, err := http.Get(srv.URL + "/contracts/" + artifact.ID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.StatusCode)
	}
	if ct := dl.Header.Get("Content-Type"); ct != models.ContentType(models.FormatDocx) {
		t.Errorf("content-type = %q", ct)
	}
	cd := dl.Header.Get("Content-Disposition")
	if !strings.Contains(cd, url.PathEscape(artifact.FileName)) {
		t.Errorf("content-disposition = %q", cd)
	}

	data, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(onDisk) {
		t.Error("downloaded bytes differ from the generated file")
	}
	doc := testutil.DocumentXML(t, data)
	if !strings.Contains(doc, "Jane Doe / Riverside Tower") {
		t.Errorf("rendered document = %q", doc)
	}

	// A confirmed download deletes the artifact: second attempt is a 404
	// and the generated directory is empty again.
	dl2, err := http.Get(srv.URL + "/contracts/" + artifact.ID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	if dl2.StatusCode != http.StatusNotFound {
		t.Errorf("second download status = %d, want 404", dl2.StatusCode)
	}
	if msg := decodeError(t, dl2); msg != msgFileNotFound {
		t.Errorf("error = %q", msg)
	}
	if n := countArtifactFiles(t, root); n != 0 {
		t.Errorf("%d files left after download", n)
	}
}

func TestCreateContractFormEncoded(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	form := url.Values{
		"employee_name": {"John Smith"},
		"project_name":  {"Harbor Bridge"},
		"position":      {"Foreman"},
	}
	resp, err := http.PostForm(srv.URL+"/contracts", form)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	artifact := decodeArtifact(t, resp)
	if artifact.FileName != "John_Smith_Contract.docx" {
		t.Errorf("file_name = %q", artifact.FileName)
	}
}

func TestCreateContractValidation(t *testing.T) {
	srv, root := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/contracts", `{"project_name": "Tower"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	msg := decodeError(t, resp)
	if !strings.Contains(msg, "employee_name") {
		t.Errorf("error should name the missing field: %q", msg)
	}
	// A rejected request leaves no file behind.
	if n := countArtifactFiles(t, root); n != 0 {
		t.Errorf("%d files created by invalid request", n)
	}
}

func TestCreateContractBadJSON(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/contracts", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "invalid request body" {
		t.Errorf("error = %q", msg)
	}
}

func TestGenerateContractOneShot(t *testing.T) {
	srv, root := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/contracts/generate", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Jane_Doe_Contract.docx") {
		t.Errorf("content-disposition = %q", cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc := testutil.DocumentXML(t, data); !strings.Contains(doc, "Jane Doe") {
		t.Errorf("document = %q", doc)
	}

	// One-shot generation never leaves an artifact behind.
	if n := countArtifactFiles(t, root); n != 0 {
		t.Errorf("%d files left after one-shot generate", n)
	}
	list, err := http.Get(srv.URL + "/contracts")
	if err != nil {
		t.Fatal(err)
	}
	defer list.Body.Close()
	var page ArtifactListResponse
	if err := json.NewDecoder(list.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Errorf("total = %d, want 0", page.Total)
	}
}

func TestLeaveContractFlow(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/leave-contract", `{
		"employee_name": "Maria Santos",
		"start_date": "2025-07-01",
		"end_date": "2025-07-15",
		"reason_for_leave": "Annual leave"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	artifact := decodeArtifact(t, resp)
	if artifact.FileName != "Maria_Santos_Leave_Contract.docx" {
		t.Errorf("file_name = %q", artifact.FileName)
	}
	if artifact.Kind != string(models.KindLeave) {
		t.Errorf("kind = %q", artifact.Kind)
	}

	dl, err := http.Get(srv.URL + "/leave-contract/" + artifact.ID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.StatusCode)
	}
	data, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc := testutil.DocumentXML(t, data); !strings.Contains(doc, "Annual leave") {
		t.Errorf("document = %q", doc)
	}
}

func TestLeaveContractValidation(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/leave-contract", `{"employee_name": "Maria Santos"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	msg := decodeError(t, resp)
	for _, field := range []string{"start_date", "end_date", "reason_for_leave"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error missing field %s: %q", field, msg)
		}
	}
}

func TestDownloadUnknownID(t *testing.T) {
	srv, root := newTestAPI(t, convert.Disabled{})

	// An unrelated artifact must survive a missed download.
	postJSON(t, srv.URL+"/contracts", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/contracts/9b1e2f3a-0c4d-4e5f-8a6b-7c8d9e0f1a2b/download")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != msgFileNotFound {
		t.Errorf("error = %q", msg)
	}
	if n := countArtifactFiles(t, root); n != 1 {
		t.Errorf("%d files after 404, want the original 1", n)
	}
}

func TestGenerateLeaveContractOneShot(t *testing.T) {
	srv, root := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/leave-contract/generate", `{
		"employee_name": "Maria Santos",
		"start_date": "2025-01-10",
		"end_date": "2025-01-15",
		"reason_for_leave": "Medical"
	}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Maria_Santos_Leave_Contract.docx") {
		t.Errorf("content-disposition = %q", cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc := testutil.DocumentXML(t, data); !strings.Contains(doc, "Medical") {
		t.Errorf("document = %q", doc)
	}
	if n := countArtifactFiles(t, root); n != 0 {
		t.Errorf("%d files left after one-shot leave generate", n)
	}
}

func TestDownloadPDFUnavailable(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	resp := postJSON(t, srv.URL+"/contracts", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`)
	artifact := decodeArtifact(t, resp)

	pdf, err := http.Get(srv.URL + "/contracts/" + artifact.ID + "/download?format=pdf")
	if err != nil {
		t.Fatal(err)
	}
	if pdf.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", pdf.StatusCode)
	}
	if msg := decodeError(t, pdf); msg != msgConvertFailed {
		t.Errorf("error = %q", msg)
	}

	// The failed conversion leaves the original artifact downloadable.
	dl, err := http.Get(srv.URL + "/contracts/" + artifact.ID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Errorf("docx download after failed pdf = %d, want 200", dl.StatusCode)
	}
}

// fakePDFConverter writes a stub script that mimics the LibreOffice CLI.
func fakePDFConverter(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "fake-soffice")
	body := `#!/bin/sh
outdir="$5"
file="$6"
base=$(basename "$file")
printf '%s' "pdf bytes" > "$outdir/${base%.*}.pdf"
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestDownloadPDFConverted(t *testing.T) {
	srv, root := newTestAPI(t, convert.NewExecConverter(fakePDFConverter(t)))

	resp := postJSON(t, srv.URL+"/contracts", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`)
	artifact := decodeArtifact(t, resp)

	pdf, err := http.Get(srv.URL + "/contracts/" + artifact.ID + "/download?format=pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer pdf.Body.Close()
	if pdf.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", pdf.StatusCode)
	}
	if ct := pdf.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := pdf.Header.Get("Content-Disposition"); !strings.Contains(cd, "Jane_Doe_Contract.pdf") {
		t.Errorf("content-disposition = %q", cd)
	}
	data, err := io.ReadAll(pdf.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("body = %q", data)
	}

	// Both the original and the converted copy are cleaned up.
	if n := countArtifactFiles(t, root); n != 0 {
		t.Errorf("%d files left after pdf download", n)
	}
}

func TestListArtifacts(t *testing.T) {
	srv, _ := newTestAPI(t, convert.Disabled{})

	postJSON(t, srv.URL+"/contracts", `{
		"employee_name": "Jane Doe",
		"project_name": "Riverside Tower",
		"position": "Site Engineer"
	}`).Body.Close()
	postJSON(t, srv.URL+"/leave-contract", `{
		"employee_name": "Maria Santos",
		"start_date": "2025-07-01",
		"end_date": "2025-07-15",
		"reason_for_leave": "Annual leave"
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/contracts")
	if err != nil {
		t.Fatal(err)
	}
	var page ArtifactListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if page.Total != 2 || len(page.Artifacts) != 2 {
		t.Errorf("total = %d, len = %d, want 2/2", page.Total, len(page.Artifacts))
	}

	resp, err = http.Get(srv.URL + "/contracts?kind=leave_contract")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if page.Total != 1 {
		t.Errorf("leave filter total = %d, want 1", page.Total)
	}

	resp, err = http.Get(srv.URL + "/contracts?kind=bogus")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	templates := testutil.TestTemplates(t, templateBody)
	_, store := testutil.TestOutput(t)
	db := testutil.TestRegistry(t)
	svc := contract.NewService(templates, store, db, nil)

	srv := httptest.NewServer(NewRouter(svc, convert.Disabled{}, true, "secret", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/contracts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/contracts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/contracts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", resp.StatusCode)
	}
}
