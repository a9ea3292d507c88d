package ingest

import "testing"

func TestExtractFileInfoParsesDateRange(t *testing.T) {
	t.Parallel()

	info, ok := ExtractFileInfo("produtividade_Joao_01082024-31082024.csv")
	if !ok {
		t.Fatalf("ExtractFileInfo ok got false want true")
	}
	if got, want := info.Kind, KindProductivity; got != want {
		t.Fatalf("kind got %q want %q", got, want)
	}
	if got, want := info.AgentName, "Joao"; got != want {
		t.Fatalf("agent got %q want %q", got, want)
	}
	if got, want := info.Period.Display, "01/08/2024 - 31/08/2024"; got != want {
		t.Fatalf("display got %q want %q", got, want)
	}
	if got, want := info.Period.SortKey, "20240801"; got != want {
		t.Fatalf("sort key got %q want %q", got, want)
	}
}

func TestExtractFileInfoIsCaseInsensitiveOnKind(t *testing.T) {
	t.Parallel()

	info, ok := ExtractFileInfo("CLIENTES_Maria_carteira.csv")
	if !ok {
		t.Fatalf("ExtractFileInfo ok got false want true")
	}
	if got, want := info.Kind, KindClients; got != want {
		t.Fatalf("kind got %q want %q", got, want)
	}
	if got, want := info.AgentName, "Maria"; got != want {
		t.Fatalf("agent got %q want %q", got, want)
	}
}

func TestExtractFileInfoFallsBackToRawPeriod(t *testing.T) {
	t.Parallel()

	info, ok := ExtractFileInfo("produtividade_Ana_agosto.csv")
	if !ok {
		t.Fatalf("ExtractFileInfo ok got false want true")
	}
	if got, want := info.Period.Display, "agosto"; got != want {
		t.Fatalf("display got %q want %q", got, want)
	}
	if got, want := info.Period.SortKey, "agosto"; got != want {
		t.Fatalf("sort key got %q want %q", got, want)
	}
}

func TestExtractFileInfoRejectsNonConformingNames(t *testing.T) {
	t.Parallel()

	cases := []string{
		"relatorio_Joao_012024.csv",
		"produtividade.csv",
		"notas.txt",
	}
	for _, name := range cases {
		if _, ok := ExtractFileInfo(name); ok {
			t.Fatalf("ExtractFileInfo(%q) ok got true want false", name)
		}
	}
}

func TestAgentNameFromRosterFile(t *testing.T) {
	t.Parallel()

	if got, want := AgentNameFromRosterFile("Joao_da_Silva.csv"), "Joao da Silva"; got != want {
		t.Fatalf("agent got %q want %q", got, want)
	}
}
