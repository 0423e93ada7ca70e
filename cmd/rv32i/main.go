// Command rv32i loads and runs, or disassembles, a 32-bit RISC-V ELF
// executable.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/klenin/rv32i/pkg/cpu"
	"github.com/klenin/rv32i/pkg/disasm"
	"github.com/klenin/rv32i/pkg/elf"
	"github.com/klenin/rv32i/pkg/hostio"
	"github.com/klenin/rv32i/pkg/isa"
	"github.com/klenin/rv32i/pkg/vm"
)

func main() {
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:   "rv32i",
		Short: "A user-mode emulator for the RV32I instruction set",
	}
	rootCmd.AddCommand(newRunCmd(), newDisasmCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRunCmd() *cobra.Command {
	var verbose bool
	var step bool

	cmd := &cobra.Command{
		Use:   "run <elf-path>",
		Short: "Load and execute an ELF until it halts or traps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			machine := vm.New(hostio.Std())
			if _, err := machine.Load(data); err != nil {
				log.Printf("rv32i: %v", err)
				os.Exit(126)
			}

			if verbose {
				machine.TraceFunc = func(pc uint32, in isa.Instruction) {
					log.Printf("rv32i: %#08x  %s", pc, in)
				}
			}
			if step {
				reader := bufio.NewReader(os.Stdin)
				prev := machine.TraceFunc
				machine.TraceFunc = func(pc uint32, in isa.Instruction) {
					if prev != nil {
						prev(pc, in)
					}
					log.Printf("rv32i: paused at %#08x, press enter to continue...", pc)
					_, _ = reader.ReadString('\n')
				}
			}

			if err := machine.Run(context.Background()); err != nil {
				log.Printf("rv32i: %v", err)
				os.Exit(126)
			}
			os.Exit(int(machine.ExitCode()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace each fetched instruction")
	cmd.Flags().BoolVar(&step, "step", false, "pause for input before each instruction")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <elf-path>",
		Short: "Decode and print one line per instruction, without executing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			mem := cpu.NewMemory()
			img, err := elf.Load(data, mem)
			if err != nil {
				return err
			}

			seg := entrySegment(img, img.Entry)
			if seg == nil {
				return fmt.Errorf("rv32i: no loaded segment contains the entry point %#x", img.Entry)
			}
			code := mem.ReadBytes(seg.VAddr, int(seg.FileSize))
			for _, line := range disasm.Segment(seg.VAddr, code) {
				fmt.Println(line)
			}
			return nil
		},
	}
	return cmd
}

func entrySegment(img *elf.Image, entry uint32) *elf.ProgramHeader {
	for i := range img.Program {
		ph := &img.Program[i]
		if ph.Type != 1 { // only PT_LOAD segments are copied into memory
			continue
		}
		if entry >= ph.VAddr && entry < ph.VAddr+ph.FileSize {
			return ph
		}
	}
	return nil
}
